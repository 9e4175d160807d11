package authz

// Permission 平台能力，取代按字符串名查找的能力表
type Permission int

const (
	QuizManage Permission = iota + 1
	QuizView
	QuizPreview
	QuestionUseAll
	QuestionUseMine
	QuestionEditAll
	QuestionEditMine
	QuestionViewAll
	BadgesViewAwarded
	BadgesConfigure
	ReportProgressView
	CourseViewAll
)

var permissionNames = map[Permission]string{
	QuizManage:         "mod/quiz:manage",
	QuizView:           "mod/quiz:view",
	QuizPreview:        "mod/quiz:preview",
	QuestionUseAll:     "moodle/question:useall",
	QuestionUseMine:    "moodle/question:usemine",
	QuestionEditAll:    "moodle/question:editall",
	QuestionEditMine:   "moodle/question:editmine",
	QuestionViewAll:    "moodle/question:viewall",
	BadgesViewAwarded:  "moodle/badges:viewawarded",
	BadgesConfigure:    "moodle/badges:configuredetails",
	ReportProgressView: "report/progress:view",
	CourseViewAll:      "moodle/course:viewhiddencourses",
}

func (p Permission) String() string {
	if name, ok := permissionNames[p]; ok {
		return name
	}
	return "unknown"
}

// AllPermissions 按声明顺序返回全部能力
func AllPermissions() []Permission {
	all := make([]Permission, 0, len(permissionNames))
	for p := QuizManage; p <= CourseViewAll; p++ {
		all = append(all, p)
	}
	return all
}
