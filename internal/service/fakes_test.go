package service

import (
	"context"
	"sort"
	"time"

	"anoa.com/wikigradebook/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. Update applies the given columns and reports
// rows affected the way gorm does: zero when nothing actually changed.

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) add(username, role string) uuid.UUID {
	id := uuid.New()
	r.users[id] = &model.User{
		ID:       id,
		Username: username,
		Role:     model.Role{Name: role},
	}
	return id
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	return &model.Role{Name: name}, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context) ([]*model.User, error) {
	return r.byRole(""), nil
}

func (r *fakeUserRepo) FindByRole(ctx context.Context, roleName string) ([]*model.User, error) {
	return r.byRole(roleName), nil
}

func (r *fakeUserRepo) byRole(roleName string) []*model.User {
	var users []*model.User
	for _, u := range r.users {
		if roleName == "" || u.Role.Name == roleName {
			copied := *u
			users = append(users, &copied)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

func (r *fakeUserRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

type fakeAssignmentRepo struct {
	nextID      uint
	assignments map[uint]*model.Assignment
	memberships map[[2]uint]bool // [groupID, assignmentID]
	evaluations *fakeEvaluationRepo
	attachments *fakeAttachmentRepo
}

func newFakeAssignmentRepo(evaluations *fakeEvaluationRepo, attachments *fakeAttachmentRepo) *fakeAssignmentRepo {
	return &fakeAssignmentRepo{
		nextID:      1,
		assignments: make(map[uint]*model.Assignment),
		memberships: make(map[[2]uint]bool),
		evaluations: evaluations,
		attachments: attachments,
	}
}

func (r *fakeAssignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	assignment.ID = r.nextID
	r.nextID++
	copied := *assignment
	r.assignments[assignment.ID] = &copied
	return nil
}

func (r *fakeAssignmentRepo) FindByID(ctx context.Context, id uint) (*model.Assignment, error) {
	assignment, ok := r.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *assignment
	return &copied, nil
}

func (r *fakeAssignmentRepo) FindAll(ctx context.Context) ([]model.Assignment, error) {
	var assignments []model.Assignment
	for _, a := range r.assignments {
		assignments = append(assignments, *a)
	}
	sort.Slice(assignments, func(i, j int) bool {
		a, b := assignments[i], assignments[j]
		switch {
		case a.Date == nil && b.Date == nil:
			return a.Title < b.Title
		case a.Date == nil:
			return false
		case b.Date == nil:
			return true
		case *a.Date != *b.Date:
			return *a.Date < *b.Date
		default:
			return a.Title < b.Title
		}
	})
	return assignments, nil
}

func (r *fakeAssignmentRepo) Update(ctx context.Context, id uint, fields map[string]any) (int64, error) {
	assignment, ok := r.assignments[id]
	if !ok {
		return 0, nil
	}

	changed := false
	for key, value := range fields {
		switch key {
		case "title":
			if v := value.(string); assignment.Title != v {
				assignment.Title = v
				changed = true
			}
		case "value":
			if v := value.(float64); assignment.Value != v {
				assignment.Value = v
				changed = true
			}
		case "enabled":
			if v := value.(bool); assignment.Enabled != v {
				assignment.Enabled = v
				changed = true
			}
		case "date":
			v := value.(*string)
			if !equalStrPtr(assignment.Date, v) {
				assignment.Date = v
				changed = true
			}
		}
	}
	if !changed {
		return 0, nil
	}
	return 1, nil
}

func (r *fakeAssignmentRepo) DeleteCascade(ctx context.Context, id uint) (int64, error) {
	var total int64

	for key, e := range r.evaluations.evaluations {
		if e.AssignmentID == id {
			delete(r.evaluations.evaluations, key)
			total++
		}
	}
	for edge := range r.memberships {
		if edge[1] == id {
			delete(r.memberships, edge)
			total++
		}
	}
	for aid, a := range r.attachments.attachments {
		if a.AssignmentID != nil && *a.AssignmentID == id {
			delete(r.attachments.attachments, aid)
			total++
		}
	}
	if _, ok := r.assignments[id]; ok {
		delete(r.assignments, id)
		total++
	}
	return total, nil
}

func (r *fakeAssignmentRepo) ListGroupIDs(ctx context.Context, assignmentID uint) ([]uint, error) {
	var ids []uint
	for edge := range r.memberships {
		if edge[1] == assignmentID {
			ids = append(ids, edge[0])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeAssignmentRepo) InsertMembership(ctx context.Context, groupID, assignmentID uint) error {
	r.memberships[[2]uint{groupID, assignmentID}] = true
	return nil
}

func (r *fakeAssignmentRepo) DeleteMembership(ctx context.Context, groupID, assignmentID uint) (int64, error) {
	edge := [2]uint{groupID, assignmentID}
	if !r.memberships[edge] {
		return 0, nil
	}
	delete(r.memberships, edge)
	return 1, nil
}

type evalKey struct {
	userID       uuid.UUID
	assignmentID uint
}

type fakeEvaluationRepo struct {
	evaluations map[evalKey]*model.Evaluation
	users       *fakeUserRepo
}

func newFakeEvaluationRepo(users *fakeUserRepo) *fakeEvaluationRepo {
	return &fakeEvaluationRepo{
		evaluations: make(map[evalKey]*model.Evaluation),
		users:       users,
	}
}

func (r *fakeEvaluationRepo) Create(ctx context.Context, evaluation *model.Evaluation) error {
	copied := *evaluation
	r.evaluations[evalKey{evaluation.UserID, evaluation.AssignmentID}] = &copied
	return nil
}

func (r *fakeEvaluationRepo) Find(ctx context.Context, userID uuid.UUID, assignmentID uint) (*model.Evaluation, error) {
	evaluation, ok := r.evaluations[evalKey{userID, assignmentID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *evaluation
	return &copied, nil
}

func (r *fakeEvaluationRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Evaluation, error) {
	var evaluations []model.Evaluation
	for _, e := range r.evaluations {
		if e.UserID == userID {
			evaluations = append(evaluations, *e)
		}
	}
	return evaluations, nil
}

func (r *fakeEvaluationRepo) FindByAssignment(ctx context.Context, assignmentID uint) ([]model.Evaluation, error) {
	var evaluations []model.Evaluation
	for _, e := range r.evaluations {
		if e.AssignmentID == assignmentID {
			copied := *e
			if r.users != nil {
				if u, ok := r.users.users[e.UserID]; ok {
					user := *u
					copied.User = &user
				}
			}
			evaluations = append(evaluations, copied)
		}
	}
	sort.Slice(evaluations, func(i, j int) bool {
		return evaluations[i].UserID.String() < evaluations[j].UserID.String()
	})
	return evaluations, nil
}

func (r *fakeEvaluationRepo) Update(ctx context.Context, userID uuid.UUID, assignmentID uint, fields map[string]any) (int64, error) {
	evaluation, ok := r.evaluations[evalKey{userID, assignmentID}]
	if !ok {
		return 0, nil
	}

	changed := false
	for key, value := range fields {
		switch key {
		case "score":
			if v := value.(float64); evaluation.Score != v {
				evaluation.Score = v
				changed = true
			}
		case "enabled":
			if v := value.(bool); evaluation.Enabled != v {
				evaluation.Enabled = v
				changed = true
			}
		case "date":
			v := value.(*string)
			if !equalStrPtr(evaluation.Date, v) {
				evaluation.Date = v
				changed = true
			}
		case "comment":
			if v := value.(string); evaluation.Comment != v {
				evaluation.Comment = v
				changed = true
			}
		}
	}
	if !changed {
		return 0, nil
	}
	return 1, nil
}

func (r *fakeEvaluationRepo) Delete(ctx context.Context, userID uuid.UUID, assignmentID uint) (int64, error) {
	key := evalKey{userID, assignmentID}
	if _, ok := r.evaluations[key]; !ok {
		return 0, nil
	}
	delete(r.evaluations, key)
	return 1, nil
}

type fakeAdjustmentRepo struct {
	nextID      uint
	adjustments map[uint]*model.Adjustment
}

func newFakeAdjustmentRepo() *fakeAdjustmentRepo {
	return &fakeAdjustmentRepo{nextID: 1, adjustments: make(map[uint]*model.Adjustment)}
}

func (r *fakeAdjustmentRepo) Create(ctx context.Context, adjustment *model.Adjustment) error {
	adjustment.ID = r.nextID
	r.nextID++
	copied := *adjustment
	r.adjustments[adjustment.ID] = &copied
	return nil
}

func (r *fakeAdjustmentRepo) FindByID(ctx context.Context, id uint) (*model.Adjustment, error) {
	adjustment, ok := r.adjustments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *adjustment
	return &copied, nil
}

func (r *fakeAdjustmentRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Adjustment, error) {
	var adjustments []model.Adjustment
	for _, a := range r.adjustments {
		if a.UserID == userID {
			adjustments = append(adjustments, *a)
		}
	}
	sort.Slice(adjustments, func(i, j int) bool { return adjustments[i].ID < adjustments[j].ID })
	return adjustments, nil
}

func (r *fakeAdjustmentRepo) Update(ctx context.Context, id uint, fields map[string]any) (int64, error) {
	adjustment, ok := r.adjustments[id]
	if !ok {
		return 0, nil
	}

	changed := false
	for key, value := range fields {
		switch key {
		case "user_id":
			if v := value.(uuid.UUID); adjustment.UserID != v {
				adjustment.UserID = v
				changed = true
			}
		case "title":
			if v := value.(string); adjustment.Title != v {
				adjustment.Title = v
				changed = true
			}
		case "value":
			if v := value.(float64); adjustment.Value != v {
				adjustment.Value = v
				changed = true
			}
		case "score":
			if v := value.(float64); adjustment.Score != v {
				adjustment.Score = v
				changed = true
			}
		case "enabled":
			if v := value.(bool); adjustment.Enabled != v {
				adjustment.Enabled = v
				changed = true
			}
		case "date":
			v := value.(*string)
			if !equalStrPtr(adjustment.Date, v) {
				adjustment.Date = v
				changed = true
			}
		case "comment":
			if v := value.(string); adjustment.Comment != v {
				adjustment.Comment = v
				changed = true
			}
		}
	}
	if !changed {
		return 0, nil
	}
	return 1, nil
}

func (r *fakeAdjustmentRepo) Delete(ctx context.Context, id uint) (int64, error) {
	if _, ok := r.adjustments[id]; !ok {
		return 0, nil
	}
	delete(r.adjustments, id)
	return 1, nil
}

type fakeGroupRepo struct {
	nextID      uint
	groups      map[uint]*model.Group
	assignments *fakeAssignmentRepo
}

func newFakeGroupRepo(assignments *fakeAssignmentRepo) *fakeGroupRepo {
	return &fakeGroupRepo{nextID: 1, groups: make(map[uint]*model.Group), assignments: assignments}
}

func (r *fakeGroupRepo) Create(ctx context.Context, group *model.Group) error {
	group.ID = r.nextID
	r.nextID++
	copied := *group
	r.groups[group.ID] = &copied
	return nil
}

func (r *fakeGroupRepo) FindByID(ctx context.Context, id uint) (*model.Group, error) {
	group, ok := r.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *group
	return &copied, nil
}

func (r *fakeGroupRepo) FindAll(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	for _, g := range r.groups {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups, nil
}

func (r *fakeGroupRepo) Update(ctx context.Context, id uint, fields map[string]any) (int64, error) {
	group, ok := r.groups[id]
	if !ok {
		return 0, nil
	}

	changed := false
	for key, value := range fields {
		switch key {
		case "title":
			if v := value.(string); group.Title != v {
				group.Title = v
				changed = true
			}
		case "enabled":
			if v := value.(bool); group.Enabled != v {
				group.Enabled = v
				changed = true
			}
		}
	}
	if !changed {
		return 0, nil
	}
	return 1, nil
}

func (r *fakeGroupRepo) Delete(ctx context.Context, id uint) (int64, error) {
	var total int64
	if r.assignments != nil {
		for edge := range r.assignments.memberships {
			if edge[0] == id {
				delete(r.assignments.memberships, edge)
				total++
			}
		}
	}
	if _, ok := r.groups[id]; ok {
		delete(r.groups, id)
		total++
	}
	return total, nil
}

func (r *fakeGroupRepo) CountMembers(ctx context.Context, id uint) (int64, error) {
	var count int64
	if r.assignments != nil {
		for edge := range r.assignments.memberships {
			if edge[0] == id {
				count++
			}
		}
	}
	return count, nil
}

type fakeAttachmentRepo struct {
	nextID      uint
	attachments map[uint]*model.Attachment
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{nextID: 1, attachments: make(map[uint]*model.Attachment)}
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, attachment *model.Attachment) error {
	attachment.ID = r.nextID
	r.nextID++
	attachment.CreatedAt = time.Now()
	copied := *attachment
	r.attachments[attachment.ID] = &copied
	return nil
}

func (r *fakeAttachmentRepo) LinkToAssignment(ctx context.Context, attachmentIDs []uint, assignmentID uint, userID uuid.UUID) error {
	for _, id := range attachmentIDs {
		a, ok := r.attachments[id]
		if !ok || a.UserID != userID {
			continue
		}
		if a.AssignmentID != nil && *a.AssignmentID != assignmentID {
			continue
		}
		claimed := assignmentID
		a.AssignmentID = &claimed
	}
	return nil
}

func (r *fakeAttachmentRepo) FindByAssignment(ctx context.Context, assignmentID uint) ([]model.Attachment, error) {
	var attachments []model.Attachment
	for _, a := range r.attachments {
		if a.AssignmentID != nil && *a.AssignmentID == assignmentID {
			attachments = append(attachments, *a)
		}
	}
	return attachments, nil
}

func (r *fakeAttachmentRepo) FindOrphans(ctx context.Context, cutoffTime time.Time) ([]model.Attachment, error) {
	var attachments []model.Attachment
	for _, a := range r.attachments {
		if a.AssignmentID == nil && a.CreatedAt.Before(cutoffTime) {
			attachments = append(attachments, *a)
		}
	}
	return attachments, nil
}

func (r *fakeAttachmentRepo) Delete(ctx context.Context, id uint) error {
	delete(r.attachments, id)
	return nil
}

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strp(s string) *string {
	return &s
}
