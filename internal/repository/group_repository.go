package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/labsyncpro/labsyncpro/internal/model"
)

// ErrGroupNotFound is returned when a group lookup fails.
var ErrGroupNotFound = errors.New("group not found")

// GroupDetail is a group together with its ordered member list.
type GroupDetail struct {
	ID          uint64        `json:"id"`
	ClassID     uint64        `json:"class_id"`
	Name        string        `json:"name"`
	MaxMembers  uint32        `json:"max_members"`
	Description *string       `json:"description,omitempty"`
	Members     []GroupMember `json:"members"`
}

// GroupMember is one student inside a group with their role.
type GroupMember struct {
	UserID   uint64 `json:"user_id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"` // LEADER | MEMBER
}

// GroupRepo provides data access to class groups and their members.
type GroupRepo struct {
	db *sql.DB
}

// NewGroupRepo constructs a GroupRepo with the given DB handle.
func NewGroupRepo(db *sql.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// Create inserts a new group.  A duplicate name within the class
// yields ErrConflict.
func (r *GroupRepo) Create(ctx context.Context, g *model.Group) error {
	const q = `INSERT INTO class_groups (class_id, name, max_members, description) VALUES (?, ?, ?, ?)`
	var desc any
	if g.Description != nil {
		desc = *g.Description
	}
	res, err := r.db.ExecContext(ctx, q, g.ClassID, g.Name, g.MaxMembers, desc)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// GetByID retrieves a group by its ID.
func (r *GroupRepo) GetByID(ctx context.Context, id uint64) (*model.Group, error) {
	const q = `SELECT id, class_id, name, max_members, description, created_at, updated_at
	           FROM class_groups WHERE id = ?`
	var g model.Group
	var desc sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&g.ID, &g.ClassID, &g.Name, &g.MaxMembers, &desc, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		g.Description = &d
	}
	return &g, nil
}

// Update changes group metadata (name, max members, description).
// Returns sql.ErrNoRows when the group does not exist.
func (r *GroupRepo) Update(ctx context.Context, g *model.Group) error {
	const q = `UPDATE class_groups
	           SET name = ?, max_members = ?, description = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	var desc any
	if g.Description != nil {
		desc = *g.Description
	}
	res, err := r.db.ExecContext(ctx, q, g.Name, g.MaxMembers, desc, g.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddMember puts a student into a group.  The same student twice in
// one group yields ErrConflict; exceeding max_members also yields
// ErrConflict.
func (r *GroupRepo) AddMember(ctx context.Context, groupID, userID uint64, role string) error {
	const qCount = `SELECT g.max_members, COUNT(m.id)
	                FROM class_groups g
	                LEFT JOIN group_members m ON m.group_id = g.id
	                WHERE g.id = ?
	                GROUP BY g.max_members`
	var maxMembers, current uint32
	if err := r.db.QueryRowContext(ctx, qCount, groupID).Scan(&maxMembers, &current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGroupNotFound
		}
		return err
	}
	if current >= maxMembers {
		return ErrConflict
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)`,
		groupID, userID, role)
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// ListByClassWithMembers returns the groups of a class, each with its
// members ordered leader first, then by name.  The member lists are
// filled with a single query over all groups.
func (r *GroupRepo) ListByClassWithMembers(ctx context.Context, classID uint64) ([]GroupDetail, error) {
	const q = `SELECT id, class_id, name, max_members, description
	           FROM class_groups
	           WHERE class_id = ?
	           ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]GroupDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d GroupDetail
		var desc sql.NullString
		if err := rows.Scan(&d.ID, &d.ClassID, &d.Name, &d.MaxMembers, &desc); err != nil {
			return nil, err
		}
		if desc.Valid {
			s := desc.String
			d.Description = &s
		}
		d.Members = []GroupMember{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	const memberQ = `SELECT m.group_id, m.user_id, u.full_name, m.role
	                 FROM group_members m
	                 JOIN class_groups g ON g.id = m.group_id
	                 JOIN users u ON u.id = m.user_id
	                 WHERE g.class_id = ?
	                 ORDER BY m.group_id, (m.role <> 'LEADER'), u.full_name`
	mrows, err := r.db.QueryContext(ctx, memberQ, classID)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var gid uint64
		var m GroupMember
		if err := mrows.Scan(&gid, &m.UserID, &m.FullName, &m.Role); err != nil {
			return nil, err
		}
		if i, ok := index[gid]; ok {
			details[i].Members = append(details[i].Members, m)
		}
	}
	if err := mrows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
