package diff

import "github.com/sergi/go-diff/diffmatchpatch"

// HasChanges 判断两份文本是否存在差异
func HasChanges(old, new string) bool {
	if old == new {
		return false
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, new, false)
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffEqual {
			return true
		}
	}
	return false
}

