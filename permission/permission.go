package permission

import "fmt"

// Role is a named privilege tier. The set of valid roles is closed.
type Role string

const (
	RoleStudent   Role = "student"
	RoleTeacher   Role = "teacher"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// AllRoles lists every valid role in ascending privilege order.
func AllRoles() []Role {
	return []Role{RoleStudent, RoleTeacher, RoleModerator, RoleAdmin}
}

// ParseRole converts a raw string into a [Role], rejecting unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleTeacher, RoleModerator, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Permission names a single capability in "module:action" form.
type Permission string

// User management.
const (
	UserView        Permission = "user:view"
	UserCreate      Permission = "user:create"
	UserEdit        Permission = "user:edit"
	UserDelete      Permission = "user:delete"
	UserBan         Permission = "user:ban"
	UserUnban       Permission = "user:unban"
	UserViewProfile Permission = "user:view_profile"
	UserEditProfile Permission = "user:edit_profile"
)

// Courses.
const (
	CourseView      Permission = "course:view"
	CourseCreate    Permission = "course:create"
	CourseEdit      Permission = "course:edit"
	CourseDelete    Permission = "course:delete"
	CoursePublish   Permission = "course:publish"
	CourseUnpublish Permission = "course:unpublish"
	CourseEnroll    Permission = "course:enroll"
	CourseUnenroll  Permission = "course:unenroll"
)

// Lessons.
const (
	LessonView     Permission = "lesson:view"
	LessonCreate   Permission = "lesson:create"
	LessonEdit     Permission = "lesson:edit"
	LessonDelete   Permission = "lesson:delete"
	LessonComplete Permission = "lesson:complete"
)

// Exercises.
const (
	ExerciseView   Permission = "exercise:view"
	ExerciseCreate Permission = "exercise:create"
	ExerciseEdit   Permission = "exercise:edit"
	ExerciseDelete Permission = "exercise:delete"
	ExerciseSubmit Permission = "exercise:submit"
	ExerciseGrade  Permission = "exercise:grade"
)

// Social features.
const (
	SocialFollow   Permission = "social:follow"
	SocialUnfollow Permission = "social:unfollow"
	SocialMessage  Permission = "social:message"
	SocialPost     Permission = "social:post"
	SocialComment  Permission = "social:comment"
	SocialLike     Permission = "social:like"
	SocialShare    Permission = "social:share"
)

// Study groups.
const (
	GroupView          Permission = "group:view"
	GroupCreate        Permission = "group:create"
	GroupJoin          Permission = "group:join"
	GroupLeave         Permission = "group:leave"
	GroupEdit          Permission = "group:edit"
	GroupDelete        Permission = "group:delete"
	GroupManageMembers Permission = "group:manage_members"
	GroupModerate      Permission = "group:moderate"
)

// Content management and moderation.
const (
	ContentView     Permission = "content:view"
	ContentCreate   Permission = "content:create"
	ContentEdit     Permission = "content:edit"
	ContentDelete   Permission = "content:delete"
	ContentModerate Permission = "content:moderate"
	ContentApprove  Permission = "content:approve"
	ContentReject   Permission = "content:reject"
)

// Analytics and reporting.
const (
	AnalyticsView   Permission = "analytics:view"
	AnalyticsExport Permission = "analytics:export"
	ReportView      Permission = "report:view"
	ReportCreate    Permission = "report:create"
	ReportManage    Permission = "report:manage"
)

// System administration.
const (
	AdminPanel       Permission = "admin:panel"
	AdminSettings    Permission = "admin:settings"
	AdminLogs        Permission = "admin:logs"
	AdminBackup      Permission = "admin:backup"
	AdminMaintenance Permission = "admin:maintenance"
)

// AI tutoring and speech.
const (
	AIChat           Permission = "ai:chat"
	AITutoring       Permission = "ai:tutoring"
	AIAssessment     Permission = "ai:assessment"
	VoiceRecognition Permission = "voice:recognition"
	TextToSpeech     Permission = "voice:tts"
)

// Live classes.
const (
	LiveClassCreate   Permission = "live:create"
	LiveClassJoin     Permission = "live:join"
	LiveClassModerate Permission = "live:moderate"
	LiveClassRecord   Permission = "live:record"
)

// Gamification.
const (
	AchievementView   Permission = "achievement:view"
	AchievementEarn   Permission = "achievement:earn"
	LeaderboardView   Permission = "leaderboard:view"
	CompetitionJoin   Permission = "competition:join"
	CompetitionCreate Permission = "competition:create"
)
