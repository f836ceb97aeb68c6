package manifest

// Hook stages. All but StageManual correspond to a git hook type.
const (
	StagePreCommit        = "pre-commit"
	StagePreMergeCommit   = "pre-merge-commit"
	StagePrePush          = "pre-push"
	StagePrepareCommitMsg = "prepare-commit-msg"
	StageCommitMsg        = "commit-msg"
	StagePostCheckout     = "post-checkout"
	StagePostCommit       = "post-commit"
	StagePostMerge        = "post-merge"
	StagePostRewrite      = "post-rewrite"
	StagePreRebase        = "pre-rebase"
	StagePreAutoGC        = "pre-auto-gc"
	StageManual           = "manual"
)

// AllStages lists every canonical stage in git's invocation order.
var AllStages = []string{
	StagePreCommit,
	StagePreMergeCommit,
	StagePrePush,
	StagePrepareCommitMsg,
	StageCommitMsg,
	StagePostCheckout,
	StagePostCommit,
	StagePostMerge,
	StagePostRewrite,
	StagePreRebase,
	StagePreAutoGC,
	StageManual,
}

var legacyStages = map[string]string{
	"commit":       StagePreCommit,
	"push":         StagePrePush,
	"merge-commit": StagePreMergeCommit,
}

// NormalizeStage maps legacy stage names to their canonical form. The second
// result is false for unknown names.
func NormalizeStage(stage string) (string, bool) {
	if canonical, ok := legacyStages[stage]; ok {
		return canonical, true
	}
	for _, s := range AllStages {
		if s == stage {
			return s, true
		}
	}
	return stage, false
}

// EffectiveStages returns the canonical stages a hook runs in: its own
// stages, else the manifest default_stages, else every stage.
func (m *Manifest) EffectiveStages(h *Hook) []string {
	declared := h.Stages
	if len(declared) == 0 {
		declared = m.DefaultStages
	}
	if len(declared) == 0 {
		return AllStages
	}

	seen := make(map[string]bool)
	var stages []string
	for _, s := range declared {
		canonical, _ := NormalizeStage(s)
		if !seen[canonical] {
			seen[canonical] = true
			stages = append(stages, canonical)
		}
	}
	return stages
}

// GitHookTypes returns the git hook types the manifest needs shims for:
// the union of explicitly declared stages, excluding manual. A manifest
// that declares no stages at all only needs pre-commit.
func (m *Manifest) GitHookTypes() []string {
	used := make(map[string]bool)
	for _, s := range m.DefaultStages {
		if canonical, ok := NormalizeStage(s); ok {
			used[canonical] = true
		}
	}
	for _, ref := range m.Hooks() {
		for _, s := range ref.Hook.Stages {
			if canonical, ok := NormalizeStage(s); ok {
				used[canonical] = true
			}
		}
		if len(ref.Hook.Stages) == 0 && len(m.DefaultStages) == 0 {
			used[StagePreCommit] = true
		}
	}

	var types []string
	for _, s := range AllStages {
		if s != StageManual && used[s] {
			types = append(types, s)
		}
	}
	return types
}
