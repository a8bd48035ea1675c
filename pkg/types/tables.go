package types

// Collection names. Each names one fallback JSONL collection and the
// relational table that mirrors it.
const (
	CollectionCategories = "categories"
	CollectionProjects   = "projects"
	CollectionTasks      = "tasks"
	CollectionNotes      = "notes"
)

// StandardCollections lists the entity collections in dependency order:
// categories before projects, projects before tasks.
var StandardCollections = []string{
	CollectionCategories,
	CollectionProjects,
	CollectionTasks,
	CollectionNotes,
}
