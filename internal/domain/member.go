package domain

// MemberResponses holds one member's stored answers keyed by question id.
// Answers are in their encoded form (see EncodeAnswer).
type MemberResponses struct {
	UserID  string            `yaml:"userId" json:"userId"`
	Name    string            `yaml:"name" json:"name"`
	Answers map[string]string `yaml:"answers" json:"answers"`
}

// GroupInput is a group of members plus the stored actual answers they are
// scored against.
type GroupInput struct {
	Members []MemberResponses `yaml:"members" json:"members"`
	Actuals map[string]string `yaml:"actuals" json:"actuals"`
}
