package mysql

// The whole residence is kept as a JSON document; only the key and the
// list position are real columns.
const createResidencesSQL = `
CREATE TABLE IF NOT EXISTS residences (
  id         VARCHAR(191) NOT NULL PRIMARY KEY,
  position   INT          NOT NULL DEFAULT 0,
  doc        JSON         NOT NULL,
  updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  KEY idx_residences_position (position, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

const upsertResidenceSQL = `
INSERT INTO residences (id, position, doc)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  position   = VALUES(position),
  doc        = VALUES(doc),
  updated_at = CURRENT_TIMESTAMP
`

const listResidencesSQL = `
SELECT id, doc
FROM residences
ORDER BY position, id
`

const getResidenceSQL = `
SELECT id, doc
FROM residences
WHERE id = ?
`
