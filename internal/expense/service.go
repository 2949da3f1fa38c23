package expense

import (
	"context"
	"time"

	"tripledger/internal/apperr"
	"tripledger/internal/db"

	"github.com/google/uuid"
)

var nowFn = time.Now

// Service implements the expense engine: validating and persisting
// both create payload shapes, and reading expenses back out.
type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

func (s *Service) tripMembers(ctx context.Context, tripID string) (map[string]bool, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id FROM trip_members WHERE trip_id = $1`, tripID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	members := map[string]bool{}
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, apperr.Internal(err)
		}
		members[uid] = true
	}
	return members, nil
}

// CreateSimpleExpense persists a flat amount-plus-splits expense.
func (s *Service) CreateSimpleExpense(ctx context.Context, tripID, paidByID string, in SimpleSplitInput) (Expense, error) {
	members, err := s.tripMembers(ctx, tripID)
	if err != nil {
		return Expense{}, err
	}
	if !members[paidByID] {
		return Expense{}, apperr.Authorization("payer is not a member of this trip")
	}
	for _, entry := range in.Splits {
		if !members[entry.UserID] {
			return Expense{}, apperr.Validation("user %q is not a trip member", entry.UserID)
		}
	}

	computed, err := computeSimpleSplit(in)
	if err != nil {
		return Expense{}, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Expense{}, apperr.Transient(err)
	}
	defer tx.Rollback(ctx)

	id := uuid.NewString()
	var createdAt = nowFn()
	row := tx.QueryRow(ctx, `
		INSERT INTO expenses (id, trip_id, paid_by_id, title, amount, subtotal, tax, tip, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $5, 0, 0, $5, $6)
		RETURNING created_at`,
		id, tripID, paidByID, in.Title, int64(computed.total), createdAt)
	if err := row.Scan(&createdAt); err != nil {
		return Expense{}, apperr.Internal(err)
	}

	splits := make([]Split, 0, len(computed.order))
	for _, uid := range computed.order {
		share := computed.splits[uid]
		if _, err := tx.Exec(ctx, `INSERT INTO splits (expense_id, user_id, share) VALUES ($1, $2, $3)`,
			id, uid, int64(share)); err != nil {
			return Expense{}, apperr.Internal(err)
		}
		splits = append(splits, Split{ExpenseID: id, UserID: uid, Share: int64(share)})
	}

	if err := tx.Commit(ctx); err != nil {
		return Expense{}, apperr.Transient(err)
	}

	return Expense{
		ID: id, TripID: tripID, PaidByID: paidByID, Title: in.Title,
		Amount: int64(computed.total), Subtotal: int64(computed.total), Total: int64(computed.total),
		CreatedAt: createdAt, Splits: splits,
	}, nil
}

// CreateItemizedExpense runs items through per-item allocation, folds
// in tax and tip, and persists the expense, its items, assignments and
// final splits atomically.
func (s *Service) CreateItemizedExpense(ctx context.Context, tripID, paidByID string, in ItemizedInput) (Expense, error) {
	members, err := s.tripMembers(ctx, tripID)
	if err != nil {
		return Expense{}, err
	}
	if !members[paidByID] {
		return Expense{}, apperr.Authorization("payer is not a member of this trip")
	}

	computed, err := computeItemized(in, members)
	if err != nil {
		return Expense{}, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Expense{}, apperr.Transient(err)
	}
	defer tx.Rollback(ctx)

	id := uuid.NewString()
	createdAt := nowFn()
	row := tx.QueryRow(ctx, `
		INSERT INTO expenses (id, trip_id, paid_by_id, title, amount, subtotal, tax, tip, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $5, $9)
		RETURNING created_at`,
		id, tripID, paidByID, in.Title,
		int64(computed.total), int64(computed.subtotal), int64(computed.tax), int64(computed.tip), createdAt)
	if err := row.Scan(&createdAt); err != nil {
		return Expense{}, apperr.Internal(err)
	}

	items := make([]Item, 0, len(computed.items))
	for _, it := range computed.items {
		itemID := uuid.NewString()
		if _, err := tx.Exec(ctx, `INSERT INTO items (id, expense_id, name, price) VALUES ($1, $2, $3, $4)`,
			itemID, id, it.name, int64(it.price)); err != nil {
			return Expense{}, apperr.Internal(err)
		}
		for _, uid := range it.assignedUserIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO item_assignments (item_id, user_id, share) VALUES ($1, $2, $3)`,
				itemID, uid, int64(it.perUser[uid])); err != nil {
				return Expense{}, apperr.Internal(err)
			}
		}
		items = append(items, Item{ID: itemID, ExpenseID: id, Name: it.name, Price: int64(it.price), AssignedUserIDs: it.assignedUserIDs})
	}

	splits := make([]Split, 0, len(computed.order))
	for _, uid := range computed.order {
		share := computed.shares[uid]
		if _, err := tx.Exec(ctx, `INSERT INTO splits (expense_id, user_id, share) VALUES ($1, $2, $3)`,
			id, uid, int64(share)); err != nil {
			return Expense{}, apperr.Internal(err)
		}
		splits = append(splits, Split{ExpenseID: id, UserID: uid, Share: int64(share)})
	}

	if err := tx.Commit(ctx); err != nil {
		return Expense{}, apperr.Transient(err)
	}

	return Expense{
		ID: id, TripID: tripID, PaidByID: paidByID, Title: in.Title,
		Amount: int64(computed.total), Subtotal: int64(computed.subtotal),
		Tax: int64(computed.tax), Tip: int64(computed.tip), Total: int64(computed.total),
		CreatedAt: createdAt, Items: items, Splits: splits,
	}, nil
}

// ListForTrip returns a trip's expenses ordered newest first, without
// their item/split detail.
func (s *Service) ListForTrip(ctx context.Context, tripID string) ([]Expense, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, trip_id, paid_by_id, title, amount, subtotal, tax, tip, total, created_at
		FROM expenses WHERE trip_id = $1 ORDER BY created_at DESC`, tripID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.TripID, &e.PaidByID, &e.Title, &e.Amount, &e.Subtotal, &e.Tax, &e.Tip, &e.Total, &e.CreatedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

// ListWithSplitsForTrip returns every expense on a trip with its splits
// attached, the shape the balance calculator folds over, without the
// item-level detail GetByID also loads.
func (s *Service) ListWithSplitsForTrip(ctx context.Context, tripID string) ([]Expense, error) {
	expenses, err := s.ListForTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT s.expense_id, s.user_id, s.share
		FROM splits s JOIN expenses e ON e.id = s.expense_id
		WHERE e.trip_id = $1`, tripID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	byExpense := map[string][]Split{}
	for rows.Next() {
		var sp Split
		if err := rows.Scan(&sp.ExpenseID, &sp.UserID, &sp.Share); err != nil {
			return nil, apperr.Internal(err)
		}
		byExpense[sp.ExpenseID] = append(byExpense[sp.ExpenseID], sp)
	}

	for i := range expenses {
		expenses[i].Splits = byExpense[expenses[i].ID]
	}
	return expenses, nil
}

// GetByID returns a single expense with its items and splits attached.
func (s *Service) GetByID(ctx context.Context, id string) (Expense, error) {
	var e Expense
	row := s.db.QueryRow(ctx, `
		SELECT id, trip_id, paid_by_id, title, amount, subtotal, tax, tip, total, created_at
		FROM expenses WHERE id = $1`, id)
	if err := row.Scan(&e.ID, &e.TripID, &e.PaidByID, &e.Title, &e.Amount, &e.Subtotal, &e.Tax, &e.Tip, &e.Total, &e.CreatedAt); err != nil {
		return Expense{}, apperr.NotFound("expense %q not found", id)
	}

	splitRows, err := s.db.Query(ctx, `SELECT expense_id, user_id, share FROM splits WHERE expense_id = $1`, id)
	if err != nil {
		return Expense{}, apperr.Internal(err)
	}
	defer splitRows.Close()
	for splitRows.Next() {
		var sp Split
		if err := splitRows.Scan(&sp.ExpenseID, &sp.UserID, &sp.Share); err != nil {
			return Expense{}, apperr.Internal(err)
		}
		e.Splits = append(e.Splits, sp)
	}

	itemRows, err := s.db.Query(ctx, `SELECT id, expense_id, name, price FROM items WHERE expense_id = $1`, id)
	if err != nil {
		return Expense{}, apperr.Internal(err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it Item
		if err := itemRows.Scan(&it.ID, &it.ExpenseID, &it.Name, &it.Price); err != nil {
			return Expense{}, apperr.Internal(err)
		}
		assigneeRows, err := s.db.Query(ctx, `SELECT user_id FROM item_assignments WHERE item_id = $1`, it.ID)
		if err != nil {
			return Expense{}, apperr.Internal(err)
		}
		for assigneeRows.Next() {
			var uid string
			if err := assigneeRows.Scan(&uid); err != nil {
				assigneeRows.Close()
				return Expense{}, apperr.Internal(err)
			}
			it.AssignedUserIDs = append(it.AssignedUserIDs, uid)
		}
		assigneeRows.Close()
		e.Items = append(e.Items, it)
	}

	return e, nil
}
