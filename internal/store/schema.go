package store

// Amounts are stored as TEXT so decimals round-trip exactly. Rows are listed in
// rowid order, which is creation order.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS funds (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    date                 TEXT NOT NULL DEFAULT '',
    revenue              TEXT NOT NULL DEFAULT '0'
);

CREATE TABLE IF NOT EXISTS costs (
    id                   TEXT PRIMARY KEY,
    project_name         TEXT NOT NULL,
    category             TEXT NOT NULL DEFAULT '',
    date                 TEXT NOT NULL DEFAULT '',
    amount               TEXT NOT NULL DEFAULT '0',
    status               INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS work_attributions (
    id                   TEXT PRIMARY KEY,
    project_name         TEXT NOT NULL,
    founder_name         TEXT NOT NULL,
    percentage           TEXT NOT NULL DEFAULT '0',
    date                 TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS expenses (
    id                   TEXT PRIMARY KEY,
    partner_name         TEXT NOT NULL,
    work_name            TEXT NOT NULL,
    amount               TEXT NOT NULL DEFAULT '0',
    date                 TEXT NOT NULL DEFAULT '',
    status               TEXT NOT NULL DEFAULT 'Pending'
);

CREATE TABLE IF NOT EXISTS collection_versions (
    collection           TEXT PRIMARY KEY,
    version              INTEGER NOT NULL DEFAULT 0
);

INSERT OR IGNORE INTO collection_versions (collection, version) VALUES
    ('funds', 0), ('costs', 0), ('expenses', 0), ('workAttributions', 0);

CREATE INDEX IF NOT EXISTS idx_costs_project ON costs(project_name);
CREATE INDEX IF NOT EXISTS idx_work_project ON work_attributions(project_name);
CREATE INDEX IF NOT EXISTS idx_expenses_partner ON expenses(partner_name);
`

type fieldKind int

const (
	kindText fieldKind = iota
	kindDecimal
	kindBool
	kindStatus
)

type column struct {
	name string
	kind fieldKind
}

type table struct {
	name    string
	columns map[string]column // keyed by JSON field name
}

var tables = map[string]table{
	"funds": {name: "funds", columns: map[string]column{
		"name":    {"name", kindText},
		"date":    {"date", kindText},
		"revenue": {"revenue", kindDecimal},
	}},
	"costs": {name: "costs", columns: map[string]column{
		"projectName": {"project_name", kindText},
		"category":    {"category", kindText},
		"date":        {"date", kindText},
		"amount":      {"amount", kindDecimal},
		"status":      {"status", kindBool},
	}},
	"workAttributions": {name: "work_attributions", columns: map[string]column{
		"projectName": {"project_name", kindText},
		"founderName": {"founder_name", kindText},
		"percentage":  {"percentage", kindDecimal},
		"date":        {"date", kindText},
	}},
	"expenses": {name: "expenses", columns: map[string]column{
		"partnerName": {"partner_name", kindText},
		"workName":    {"work_name", kindText},
		"amount":      {"amount", kindDecimal},
		"date":        {"date", kindText},
		"status":      {"status", kindStatus},
	}},
}
