package repository

// Each entity has a closed set of associations that lookups may preload.
// The values are GORM association paths.

// StudyJoin names an association of a Study.
type StudyJoin string

const (
	StudyJoinUISettings           StudyJoin = "UISettings"
	StudyJoinBasicSettings        StudyJoin = "BasicSettings"
	StudyJoinAdvancedSettings     StudyJoin = "AdvancedSettings"
	StudyJoinPagesSettings        StudyJoin = "PagesSettings"
	StudyJoinOpenedBy             StudyJoin = "OpenedBy"
	StudyJoinClosedBy             StudyJoin = "ClosedBy"
	StudyJoinResultLastDownloadBy StudyJoin = "ResultLastDownloadBy"
)

// StudyDetails is what Study.GetByID loads: the settings bundle and admins.
var StudyDetails = []StudyJoin{
	StudyJoinUISettings,
	StudyJoinBasicSettings,
	StudyJoinAdvancedSettings,
	StudyJoinPagesSettings,
	StudyJoinOpenedBy,
	StudyJoinClosedBy,
	StudyJoinResultLastDownloadBy,
}

// PostJoin names an association of a Post.
type PostJoin string

const (
	PostJoinStudy  PostJoin = "Study"
	PostJoinSource PostJoin = "Source"
)

// PostDetails is what Post.GetByID loads.
var PostDetails = []PostJoin{PostJoinStudy, PostJoinSource}

// ParticipantJoin names an association of a Participant.
type ParticipantJoin string

const ParticipantJoinStudy ParticipantJoin = "Study"

// CommentJoin names an association of a Comment.
type CommentJoin string

const (
	CommentJoinSource CommentJoin = "Source"
	CommentJoinPost   CommentJoin = "Post"
)

// PostInteractionJoin names an association of a PostInteraction.
type PostInteractionJoin string

const (
	PostInteractionJoinParticipant PostInteractionJoin = "Participant"
	PostInteractionJoinPost        PostInteractionJoin = "Post"
	PostInteractionJoinComment     PostInteractionJoin = "Comment"
)

// CommentInteractionJoin names an association of a CommentInteraction.
type CommentInteractionJoin string

const (
	CommentInteractionJoinComment     CommentInteractionJoin = "Comment"
	CommentInteractionJoinParticipant CommentInteractionJoin = "Participant"
)

// noJoin is used by lookups that never preload.
type noJoin string
