package sqldb

import "fmt"

// Dialect carries what differs between the supported engines: the
// database/sql driver name and the reviews DDL.
type Dialect struct {
	Name             string
	Driver           string
	createReviewsSQL string
}

var MySQL = Dialect{
	Name:   "mysql",
	Driver: "mysql",
	// INTEGER PRIMARY KEY alone does not assign ids in MySQL.
	createReviewsSQL: `
CREATE TABLE IF NOT EXISTS reviews (
  id          INTEGER PRIMARY KEY AUTO_INCREMENT,
  year        INTEGER,
  summary     TEXT,
  employee_id INTEGER,
  FOREIGN KEY (employee_id) REFERENCES employees(id)
)`,
}

var SQLite = Dialect{
	Name:   "sqlite",
	Driver: "sqlite",
	createReviewsSQL: `
CREATE TABLE IF NOT EXISTS reviews (
  id          INTEGER PRIMARY KEY,
  year        INTEGER,
  summary     TEXT,
  employee_id INTEGER,
  FOREIGN KEY (employee_id) REFERENCES employees(id)
)`,
}

func DialectByName(name string) (Dialect, error) {
	switch name {
	case MySQL.Name:
		return MySQL, nil
	case SQLite.Name, "sqlite3":
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", name)
}
