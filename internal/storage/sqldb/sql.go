package sqldb

// DML is shared by both dialects; the drivers accept `?` placeholders.

const insertReviewSQL = `
INSERT INTO reviews (year, summary, employee_id)
VALUES (?, ?, ?)
`

const updateReviewSQL = `
UPDATE reviews
SET year = ?, summary = ?, employee_id = ?
WHERE id = ?
`

const deleteReviewSQL = `DELETE FROM reviews WHERE id = ?`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const selectReviewSQL = `
SELECT id, year, summary, employee_id
FROM reviews
WHERE id = ?
`

const selectReviewsSQL = `
SELECT id, year, summary, employee_id
FROM reviews
ORDER BY id
`

const selectEmployeeSQL = `
SELECT id, name, job_title
FROM employees
WHERE id = ?
`

const dropReviewsSQL = `DROP TABLE IF EXISTS reviews`
