package domain

// ResolveStatus 是集合路径解析的结果状态。
type ResolveStatus string

const (
	// ResolveAuto：唯一最优候选，可以直接落位。
	ResolveAuto ResolveStatus = "AUTO"
	// ResolveAmbiguous：≥2 个并列最优候选；解析器绝不替用户猜。
	ResolveAmbiguous ResolveStatus = "AMBIGUOUS"
	// ResolveUnresolved：零候选；是否新建容器由调用方决定。
	ResolveUnresolved ResolveStatus = "UNRESOLVED"
)

// PathCandidate 是一个候选目的路径（root → leaf 的名字序列）。
type PathCandidate struct {
	Path         []string
	Score        float64
	IsShotBranch bool
}

// Resolution 是一次解析的完整结果（每次调用基于快照新建，不保留快照引用）。
type Resolution struct {
	Status ResolveStatus
	// ChosenPath 仅在 AUTO 时非空。
	ChosenPath []string
	// Candidates 按得分降序、路径字典序稳定排序；AMBIGUOUS 时含全部并列者。
	Candidates []PathCandidate
}
