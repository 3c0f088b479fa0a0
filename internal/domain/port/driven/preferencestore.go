package driven

import "context"

// PreferenceStore defines the driven port for small user preferences such as
// the remembered list page size. GetPreference returns ("", nil) if the key
// has never been set; callers should apply defaults in that case.
type PreferenceStore interface {
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
}
