package comfy

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/ordered"
	"github.com/simonhull/promptmeta/internal/types"
)

// Merge backfills fields missing from primary with those of secondary.
// Non-blank fields of primary are never overwritten, and on a settings key
// conflict the primary entry wins. The same holds key by key inside
// SettingDetail, so every merged settings key also appears in the detail.
func Merge(primary, secondary types.ParseResult) types.ParseResult {
	out := primary
	if out.Positive == "" {
		out.Positive = secondary.Positive
	}
	if out.Negative == "" {
		out.Negative = secondary.Negative
	}
	out.SettingDetail = mergeDetail(primary.SettingDetail, secondary.SettingDetail)
	out.SettingEntries = types.MergeEntries(primary.SettingEntries, secondary.SettingEntries)
	out.Setting = types.JoinSetting(out.SettingEntries)
	return out
}

// mergeDetail merges two rendered detail objects. Keys of primary keep
// their value and position; keys only secondary has are appended.
func mergeDetail(primary, secondary string) string {
	src, err := ordered.DecodeObject(secondary)
	if err != nil || src.Len() == 0 {
		return primary
	}
	dst, err := ordered.DecodeObject(primary)
	if err != nil {
		if strings.TrimSpace(primary) == "" {
			return secondary
		}
		return primary
	}
	if !mergeObjects(dst, src) {
		return primary
	}
	return ordered.Indent(dst)
}

// mergeObjects copies keys of src missing from dst, descending into nested
// objects present on both sides. It reports whether dst changed.
func mergeObjects(dst, src *ordered.Object) bool {
	changed := false
	for _, k := range src.Keys() {
		v, _ := src.Get(k)
		if !dst.Has(k) {
			dst.Set(k, v)
			changed = true
			continue
		}
		sub, ok := v.(*ordered.Object)
		if !ok {
			continue
		}
		if into, ok := dst.Object(k); ok && mergeObjects(into, sub) {
			changed = true
		}
	}
	return changed
}
