package domain

// MedicalDocument is one question/answer pair of the assistant corpus.
type MedicalDocument struct {
	DocID      string `json:"doc_id"`
	QID        string `json:"qid"`
	PID        string `json:"pid"`
	QuestionEN string `json:"question_en"`
	AnswerEN   string `json:"answer_en"`
	QuestionVI string `json:"question_vi"`
	AnswerVI   string `json:"answer_vi"`
	Source     string `json:"source"`
}

type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

type RelevantDoc struct {
	DocID      string `json:"doc_id"`
	QuestionVI string `json:"question_vi"`
	AnswerVI   string `json:"answer_vi"`
	Source     string `json:"source"`
}

func NewRelevantDoc(doc MedicalDocument) RelevantDoc {
	return RelevantDoc{
		DocID:      doc.DocID,
		QuestionVI: doc.QuestionVI,
		AnswerVI:   doc.AnswerVI,
		Source:     doc.Source,
	}
}

type QueryResult struct {
	Answer       string        `json:"answer"`
	RelevantDocs []RelevantDoc `json:"relevant_docs"`
	Confidence   Confidence    `json:"confidence"`
}

type Statistics struct {
	TotalDocs  int            `json:"total_docs"`
	Sources    []string       `json:"sources"`
	Categories map[string]int `json:"categories"`
}
