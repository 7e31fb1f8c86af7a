package models

// StudyUISettings controls what the participant feed displays.
type StudyUISettings struct {
	ID                       uint `gorm:"primaryKey" json:"id" yaml:"-"`
	DisplayPostsInFeed       bool `json:"display_posts_in_feed" yaml:"display_posts_in_feed"`
	DisplayFollowers         bool `json:"display_followers" yaml:"display_followers"`
	DisplayCredibility       bool `json:"display_credibility" yaml:"display_credibility"`
	DisplayProgress          bool `json:"display_progress" yaml:"display_progress"`
	DisplayNumberOfReactions bool `json:"display_number_of_reactions" yaml:"display_number_of_reactions"`
	AllowMultipleReactions   bool `json:"allow_multiple_reactions" yaml:"allow_multiple_reactions"`
	PostEnabledReactions     bool `json:"post_enabled_reactions" yaml:"post_enabled_reactions"`
	CommentEnabledReactions  bool `json:"comment_enabled_reactions" yaml:"comment_enabled_reactions"`
}

func (StudyUISettings) TableName() string {
	return "study_ui_settings"
}

// StudyBasicSettings holds the descriptive part of a study.
type StudyBasicSettings struct {
	ID                    uint   `gorm:"primaryKey" json:"id" yaml:"-"`
	Name                  string `json:"name" yaml:"name"`
	Description           string `json:"description" yaml:"description"`
	Prompt                string `json:"prompt" yaml:"prompt"`
	Length                int    `json:"length" yaml:"length"`
	RequireReactions      bool   `json:"require_reactions" yaml:"require_reactions"`
	RequireComments       bool   `json:"require_comments" yaml:"require_comments"`
	RequireIdentification bool   `json:"require_identification" yaml:"require_identification"`
}

func (StudyBasicSettings) TableName() string {
	return "study_basic_settings"
}

// StudyAdvancedSettings holds timing and completion-code thresholds.
type StudyAdvancedSettings struct {
	ID                      uint `gorm:"primaryKey" json:"id" yaml:"-"`
	MinimumCommentLength    int  `json:"minimum_comment_length" yaml:"minimum_comment_length"`
	PromptDelaySeconds      int  `json:"prompt_delay_seconds" yaml:"prompt_delay_seconds"`
	ReactDelaySeconds       int  `json:"react_delay_seconds" yaml:"react_delay_seconds"`
	GenCompletionCode       int  `json:"gen_completion_code" yaml:"gen_completion_code"`
	CompletionCodeDigits    int  `json:"completion_code_digits" yaml:"completion_code_digits"`
	GenRandomDefaultAvatars int  `json:"gen_random_default_avatars" yaml:"gen_random_default_avatars"`
}

func (StudyAdvancedSettings) TableName() string {
	return "study_advanced_settings"
}

// StudyPagesSettings holds the static pages shown around the feed.
type StudyPagesSettings struct {
	ID                    uint   `gorm:"primaryKey" json:"id" yaml:"-"`
	PreIntro              string `json:"pre_intro" yaml:"pre_intro"`
	PreIntroDelaySeconds  int    `json:"pre_intro_delay_seconds" yaml:"pre_intro_delay_seconds"`
	Rules                 string `json:"rules" yaml:"rules"`
	RulesDelaySeconds     int    `json:"rules_delay_seconds" yaml:"rules_delay_seconds"`
	PostIntro             string `json:"post_intro" yaml:"post_intro"`
	PostIntroDelaySeconds int    `json:"post_intro_delay_seconds" yaml:"post_intro_delay_seconds"`
	Debrief               string `json:"debrief" yaml:"debrief"`
}

func (StudyPagesSettings) TableName() string {
	return "study_pages_settings"
}
