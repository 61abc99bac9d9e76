package retrieval

// SynonymEntry expands any query token related to Key with the words of
// every phrase in Synonyms.
type SynonymEntry struct {
	Key      string   `yaml:"key" json:"key"`
	Synonyms []string `yaml:"synonyms" json:"synonyms"`
}

// Category groups keywords counted by corpus statistics.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Lexicon is the hand-authored language data the tokenizer, scorer and
// statistics work from. Synonyms, stop words and penalty keywords are
// normalized when a Tokenizer or Scorer is built from them, so an entry
// written with đ only matches text that keeps đ. Category keywords are
// matched against lowercased text with diacritics intact.
type Lexicon struct {
	Synonyms        []SynonymEntry `yaml:"synonyms" json:"synonyms"`
	StopWords       []string       `yaml:"stop_words" json:"stop_words"`
	PenaltyKeywords []string       `yaml:"penalty_keywords" json:"penalty_keywords"`
	Categories      []Category     `yaml:"categories" json:"categories"`
}

// DefaultLexicon returns a fresh copy of the built-in Vietnamese health lexicon.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Synonyms: []SynonymEntry{
			{Key: "dau", Synonyms: []string{"dau don", "dau dau", "nhuc", "moi"}},
			{Key: "benh", Synonyms: []string{"trieu chung", "benh tat", "chung", "roi loan"}},
			{Key: "tieu duong", Synonyms: []string{"duong huyet", "tieu duong", "dai thao duong"}},
			{Key: "tim", Synonyms: []string{"tim mach", "trai tim", "te bao tim"}},
			{Key: "huyet ap", Synonyms: []string{"huyet ap", "ap huyet", "hat huyet"}},
			{Key: "ung thu", Synonyms: []string{"ung thu", "cancer", "ung", "khoi u"}},
			{Key: "giam", Synonyms: []string{"giam dau", "ha", "tru", "bot"}},
			{Key: "cach", Synonyms: []string{"phuong phap", "cach thuc", "bien phap"}},
			{Key: "dieu tri", Synonyms: []string{"chua tri", "tri lieu", "chua benh", "dieu tri"}},
			{Key: "chuan doan", Synonyms: []string{"phat hien", "xac dinh", "kham"}},
			{Key: "phong ngua", Synonyms: []string{"phong tranh", "tranh", "ngan ngua"}},
			{Key: "cam", Synonyms: []string{"cam lanh", "cam cum", "viem duong ho hap", "cum"}},
			{Key: "lau", Synonyms: []string{"bao lau", "keo dai", "thoi gian"}},
			{Key: "ho", Synonyms: []string{"ho khan", "ho dam", "ho lau ngay"}},
		},
		StopWords: []string{
			"cua", "la", "va", "khong", "nhu", "thi", "hay", "ma", "nao", "mot", "duoc",
			"den", "trong", "theo", "neu", "ve", "voi", "cho", "boi", "tren", "sau", "truoc",
		},
		PenaltyKeywords: []string{
			"trieu chung", "chan doan", "dieu tri", "cach chua", "nguyen nhan", "phong ngua",
		},
		Categories: []Category{
			{Name: "Tim mạch", Keywords: []string{"tim", "mạch máu", "huyết áp", "cholesterol"}},
			{Name: "Ung thư", Keywords: []string{"ung thư", "cancer", "lymphoma", "leukemia"}},
			{Name: "Tiểu đường", Keywords: []string{"tiểu đường", "đường huyết", "insulin"}},
			{Name: "Thần kinh", Keywords: []string{"thần kinh", "não", "đau đầu"}},
			{Name: "Xương khớp", Keywords: []string{"xương", "khớp", "viêm khớp"}},
			{Name: "Hô hấp", Keywords: []string{"phổi", "hô hấp", "hen", "ho"}},
			{Name: "Tiêu hóa", Keywords: []string{"dạ dày", "ruột", "gan", "tiêu hóa"}},
		},
	}
}
