package model

import "time"

// Group is a student working group within a class.  Each group has at
// most one leader among its members.
//
// Fields:
//  ID          – primary key identifier.
//  ClassID     – class to which this group belongs.
//  Name        – group name, unique per class.
//  MaxMembers  – maximum number of members allowed.
//  Description – optional free-form description.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Group struct {
	ID          uint64    // class_groups.id
	ClassID     uint64    // class_groups.class_id
	Name        string    // class_groups.name
	MaxMembers  uint32    // class_groups.max_members
	Description *string   // class_groups.description (nullable)
	CreatedAt   time.Time // class_groups.created_at
	UpdatedAt   time.Time // class_groups.updated_at
}

// GroupMember links a student to a group with a role of LEADER or
// MEMBER.  A student appears at most once per group.
type GroupMember struct {
	ID        uint64    // group_members.id
	GroupID   uint64    // group_members.group_id
	UserID    uint64    // group_members.user_id
	Role      string    // group_members.role (LEADER | MEMBER)
	CreatedAt time.Time // group_members.created_at
}
