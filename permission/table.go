package permission

// Table maps each role to the permissions it grants. A Table is only a
// construction input; build a [Resolver] from it before use.
type Table map[Role][]Permission

// DefaultTable returns the built-in learning-platform grant table.
// Each tier includes everything the tier below it grants.
func DefaultTable() Table {
	student := []Permission{
		CourseView,
		CourseEnroll,
		CourseUnenroll,
		LessonView,
		LessonComplete,
		ExerciseView,
		ExerciseSubmit,

		UserViewProfile,
		UserEditProfile,

		SocialFollow,
		SocialUnfollow,
		SocialMessage,
		SocialPost,
		SocialComment,
		SocialLike,
		SocialShare,

		GroupView,
		GroupCreate,
		GroupJoin,
		GroupLeave,

		AIChat,
		AITutoring,
		AIAssessment,
		VoiceRecognition,
		TextToSpeech,

		LiveClassJoin,

		AchievementView,
		AchievementEarn,
		LeaderboardView,
		CompetitionJoin,

		ReportCreate,
	}

	teacher := append(append([]Permission{}, student...),
		CourseCreate,
		CourseEdit,
		CoursePublish,
		CourseUnpublish,

		LessonCreate,
		LessonEdit,
		LessonDelete,

		ExerciseCreate,
		ExerciseEdit,
		ExerciseDelete,
		ExerciseGrade,

		ContentCreate,
		ContentEdit,

		GroupEdit,
		GroupManageMembers,
		GroupModerate,

		LiveClassCreate,
		LiveClassModerate,
		LiveClassRecord,

		AnalyticsView,

		CompetitionCreate,
	)

	moderator := append(append([]Permission{}, teacher...),
		ContentModerate,
		ContentApprove,
		ContentReject,

		ReportView,
		ReportManage,

		UserBan,
		UserUnban,
		UserView,
	)

	admin := append(append([]Permission{}, moderator...),
		UserCreate,
		UserEdit,
		UserDelete,

		CourseDelete,
		ContentDelete,

		AnalyticsExport,

		AdminPanel,
		AdminSettings,
		AdminLogs,
		AdminBackup,
		AdminMaintenance,
	)

	return Table{
		RoleStudent:   student,
		RoleTeacher:   teacher,
		RoleModerator: moderator,
		RoleAdmin:     admin,
	}
}
