package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/classpig/backend/core"
	"github.com/classpig/backend/core/schedule"
)

const classColumns = "id, user_id, name, location, start_time, end_time, created_at"

type classRepository struct {
	db core.DB
}

var _ schedule.Repository = (*classRepository)(nil)

func NewClassRepository(db core.DB) schedule.Repository {
	return &classRepository{db: db}
}

func (repo *classRepository) QueryClasses(ctx context.Context, userID int) ([]schedule.Class, error) {
	classes := make([]schedule.Class, 0)
	q := "SELECT " + classColumns + " FROM classes WHERE user_id = $1 ORDER BY id"
	if err := repo.db.SelectContext(ctx, &classes, q, userID); err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}
	return classes, nil
}

func (repo *classRepository) GetClass(ctx context.Context, userID, id int) (schedule.Class, error) {
	var cls schedule.Class
	q := "SELECT " + classColumns + " FROM classes WHERE id = $1 AND user_id = $2"
	if err := repo.db.GetContext(ctx, &cls, q, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return schedule.Class{}, schedule.ErrNotFound
		}
		return schedule.Class{}, errors.Wrap(err, "selecting class")
	}
	return cls, nil
}

func (repo *classRepository) CreateClass(ctx context.Context, cls schedule.Class) (schedule.Class, error) {
	return insertClass(ctx, repo.db, cls)
}

func (repo *classRepository) ReplaceClasses(ctx context.Context, userID int, classes []schedule.Class) ([]schedule.Class, error) {
	created := make([]schedule.Class, 0, len(classes))
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		// attendance rows go with their classes (ON DELETE CASCADE)
		if _, err := tx.ExecContext(ctx, "DELETE FROM classes WHERE user_id = $1", userID); err != nil {
			return errors.Wrap(err, "deleting classes")
		}
		for _, cls := range classes {
			cls.UserID = userID
			cls, err := insertClass(ctx, tx, cls)
			if err != nil {
				return err
			}
			created = append(created, cls)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls schedule.Class) (schedule.Class, error) {
	q := `UPDATE classes SET name = $3, location = $4, start_time = $5, end_time = $6
		WHERE id = $1 AND user_id = $2 RETURNING ` + classColumns
	var updated schedule.Class
	err := repo.db.GetContext(ctx, &updated, q, cls.ID, cls.UserID, cls.Name, cls.Location, cls.StartTime, cls.EndTime)
	if err != nil {
		if err == sql.ErrNoRows {
			return schedule.Class{}, schedule.ErrNotFound
		}
		return schedule.Class{}, errors.Wrap(err, "updating class")
	}
	return updated, nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, userID, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM classes WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	if n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

func insertClass(ctx context.Context, db core.DBExecutor, cls schedule.Class) (schedule.Class, error) {
	q := `INSERT INTO classes (user_id, name, location, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING ` + classColumns
	var created schedule.Class
	err := db.GetContext(ctx, &created, q, cls.UserID, cls.Name, cls.Location, cls.StartTime, cls.EndTime, cls.CreatedAt)
	if err != nil {
		if pqCode(err) == foreignKeyViolation {
			return schedule.Class{}, schedule.ErrNotFound
		}
		return schedule.Class{}, errors.Wrap(err, "inserting class")
	}
	return created, nil
}
