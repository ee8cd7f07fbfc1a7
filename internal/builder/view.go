package builder

// outlineView is the slice of the outline the builder consumes. It exists
// so builder tests can supply hand-built views without loading settings.
type outlineView interface {
	Name() string
	Connections() map[string][]string
	Design(name, fallback string) string
	Kind(name string) string
	Implementation() map[string]map[string]any
	Initialization() map[string]map[string]any
	Managers() []string
}
