package constants

const (
	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// CoursePageSize matches the course grid.
	CoursePageSize = 12

	// RecentProgressLimit is the default size of the dashboard activity feed.
	RecentProgressLimit = 10

	// Session
	SessionCookieName = "lms_session"
	ContextKeyUserID  = "user_id"

	MinPasswordLength = 8

	// VideoCompletionThreshold is the watched percent at which a video counts as complete.
	VideoCompletionThreshold = 90
)
