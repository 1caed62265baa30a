package model

import "time"

type QuestionType string

const (
	ShortText      QuestionType = "SHORT_TEXT"
	Paragraph      QuestionType = "PARAGRAPH"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	Checkboxes     QuestionType = "CHECKBOXES"
	Dropdown       QuestionType = "DROPDOWN"
	LinearScale    QuestionType = "LINEAR_SCALE"
	Date           QuestionType = "DATE"
	Time           QuestionType = "TIME"
	File           QuestionType = "FILE"
	Grid           QuestionType = "GRID"
	Rating         QuestionType = "RATING"
)

// IsChoice reports whether answers to the question are picked from its options.
func (t QuestionType) IsChoice() bool {
	switch t {
	case MultipleChoice, Checkboxes, Dropdown, LinearScale:
		return true
	}
	return false
}

// IsFreeText reports whether the question takes typed text.
func (t QuestionType) IsFreeText() bool {
	return t == ShortText || t == Paragraph
}

type Form struct {
	ID            string       `json:"id"`
	OwnerID       string       `json:"ownerId,omitempty"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Published     bool         `json:"published"`
	IsQuiz        bool         `json:"isQuiz"`
	Settings      FormSettings `json:"settings"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Sections      []Section    `json:"sections,omitempty"`
	ResponseCount int          `json:"responseCount,omitempty"`
}

// Questions returns every question of the form, in section order then
// question order.
func (f Form) Questions() []Question {
	var questions []Question
	for _, s := range f.Sections {
		questions = append(questions, s.Questions...)
	}
	return questions
}

type Section struct {
	ID          string     `json:"id"`
	Order       int        `json:"order"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

type Question struct {
	ID        string           `json:"id"`
	SectionID string           `json:"sectionId,omitempty"`
	Type      QuestionType     `json:"type"`
	Label     string           `json:"label"`
	HelpText  string           `json:"helpText,omitempty"`
	Required  bool             `json:"required"`
	Order     int              `json:"order"`
	Options   []Option         `json:"options,omitempty"`
	Points    int              `json:"points"`
	Metadata  QuestionMetadata `json:"metadata"`
}

type Option struct {
	ID            string `json:"id,omitempty"`
	Label         string `json:"label"`
	Value         string `json:"value"`
	IsCorrect     bool   `json:"isCorrect,omitempty"`
	GoToSectionID string `json:"goToSectionId,omitempty"`
}

type Response struct {
	ID              string            `json:"id"`
	FormID          string            `json:"formId"`
	UserID          string            `json:"userId,omitempty"`
	RespondentEmail string            `json:"respondentEmail,omitempty"`
	Answers         map[string]Answer `json:"answers"`
	Score           *int              `json:"score,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}
