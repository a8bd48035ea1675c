package sqlite

// DBFile is the database file name inside the data directory.
const DBFile = "agenda.db"

// Table DDL. "order" is a keyword and stays quoted in every statement.
const (
	createCategories = `CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    color TEXT NOT NULL,
    icon TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createProjects = `CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    category_id TEXT NOT NULL,
    description TEXT,
    created_at TEXT NOT NULL
);`

	createTasks = `CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    due_date TEXT NOT NULL,
    start_time TEXT,
    end_time TEXT,
    notification_config TEXT,
    image TEXT,
    project_id TEXT NOT NULL,
    "order" INTEGER DEFAULT 0,
    completed INTEGER DEFAULT 0,
    created_at TEXT NOT NULL
);`

	createNotes = `CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT,
    protected INTEGER DEFAULT 0,
    password_hash TEXT,
    created_at TEXT NOT NULL,
    modified_at TEXT NOT NULL
);`
)

// Index DDL for the list queries.
const (
	idxProjectsCategory = `CREATE INDEX IF NOT EXISTS idx_projects_category ON projects(category_id);`
	idxTasksProject     = `CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);`
	idxTasksDueDate     = `CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);`
	idxNotesModified    = `CREATE INDEX IF NOT EXISTS idx_notes_modified ON notes(modified_at);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createCategories,
	createProjects,
	createTasks,
	createNotes,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxProjectsCategory,
	idxTasksProject,
	idxTasksDueDate,
	idxNotesModified,
}

// migrations are additive column changes for databases created by older
// versions. Each runs on every Initialize; a duplicate column error means it
// already applied.
var migrations = []struct {
	name string
	stmt string
}{
	{"tasks.start_time", `ALTER TABLE tasks ADD COLUMN start_time TEXT`},
	{"tasks.end_time", `ALTER TABLE tasks ADD COLUMN end_time TEXT`},
	{"tasks.notification_config", `ALTER TABLE tasks ADD COLUMN notification_config TEXT`},
	{"tasks.image", `ALTER TABLE tasks ADD COLUMN image TEXT`},
}

// Column lists in Args order for each table.
const (
	categoryColumns = `id, name, color, icon, created_at`
	projectColumns  = `id, name, category_id, description, created_at`
	taskColumns     = `id, title, description, due_date, start_time, end_time, notification_config, image, project_id, "order", completed, created_at`
	noteColumns     = `id, title, content, protected, password_hash, created_at, modified_at`
)
