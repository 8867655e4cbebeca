package dynamic

// ProgramCache stores compiled expression programs keyed by expression
// strings. Scripted views share one cache across evaluators so repeated
// chain walks do not recompile.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}
