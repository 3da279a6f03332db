package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
)

var (
	_ repository.EventRepository  = (*eventRepo)(nil)
	_ repository.TicketRepository = (*ticketRepo)(nil)
)

type eventRepo struct{ pool *pgxpool.Pool }

func NewEventRepo(pool *pgxpool.Pool) *eventRepo {
	return &eventRepo{pool: pool}
}

const eventCols = `id, organizer_id, title, description, venue, city, start_at, end_at, ticket_price, ticket_capacity, tickets_sold, ticket_commission_rate, status, rejection_reason, reviewed_by_id, reviewed_at, created_at, updated_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	e := &model.Event{}
	if err := row.Scan(&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Venue, &e.City, &e.StartAt, &e.EndAt, &e.TicketPrice, &e.TicketCapacity, &e.TicketsSold, &e.TicketCommissionRate, &e.Status, &e.RejectionReason, &e.ReviewedByID, &e.ReviewedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return e, nil
}

func (r *eventRepo) Save(ctx context.Context, tx repository.Tx, e *model.Event) error {
	const q = `
INSERT INTO events (` + eventCols + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
) ON CONFLICT (id) DO UPDATE SET
  title=$3, description=$4, venue=$5, city=$6, start_at=$7, end_at=$8, ticket_price=$9, ticket_capacity=$10,
  ticket_commission_rate=$12, status=$13, rejection_reason=$14, reviewed_by_id=$15, reviewed_at=$16, updated_at=$18;`

	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.OrganizerID, e.Title, e.Description, e.Venue, e.City, e.StartAt, e.EndAt, e.TicketPrice, e.TicketCapacity, e.TicketsSold, e.TicketCommissionRate, e.Status, e.RejectionReason, e.ReviewedByID, e.ReviewedAt, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *eventRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Event, error) {
	q := `SELECT ` + eventCols + ` FROM events WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanEvent(row)
}

func (r *eventRepo) ListByOrganizer(ctx context.Context, tx repository.Tx, organizerID string) ([]*model.Event, error) {
	const q = `SELECT ` + eventCols + ` FROM events WHERE organizer_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, organizerID)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.EventStatus, limit, offset int) ([]*model.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + eventCols + ` FROM events WHERE status=$1 ORDER BY created_at ASC LIMIT $2 OFFSET $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, status, limit, offset)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepo) ListApprovedEndedBy(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + eventCols + ` FROM events WHERE status='APPROUVE' AND end_at <= $1 ORDER BY end_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, cutoff, limit)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()

	out, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

// IncrementTicketsSold bumps the sold counter only while capacity remains,
// so two buyers cannot take the last seat twice.
func (r *eventRepo) IncrementTicketsSold(ctx context.Context, tx repository.Tx, eventID string) (bool, error) {
	const q = `
UPDATE events
   SET tickets_sold = tickets_sold + 1, updated_at = NOW()
 WHERE id = $1
   AND tickets_sold < ticket_capacity;`
	cmd, err := execSQL(ctx, r.pool, tx, q, eventID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *eventRepo) CountCreatedInMonth(ctx context.Context, tx repository.Tx, organizerID string, year int, month time.Month) (int, error) {
	const q = `SELECT COUNT(*) FROM events WHERE organizer_id=$1 AND EXTRACT(YEAR FROM created_at)=$2 AND EXTRACT(MONTH FROM created_at)=$3;`
	row, err := pickRow(ctx, r.pool, tx, q, organizerID, year, int(month))
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func collectEvents(rows pgx.Rows) ([]*model.Event, error) {
	var out []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ---- tickets ----

type ticketRepo struct{ pool *pgxpool.Pool }

func NewTicketRepo(pool *pgxpool.Pool) *ticketRepo {
	return &ticketRepo{pool: pool}
}

const ticketCols = `id, event_id, buyer_id, payment_id, price, status, code, created_at, paid_at, used_at`

func scanTicket(row pgx.Row) (*model.EventTicket, error) {
	t := &model.EventTicket{}
	if err := row.Scan(&t.ID, &t.EventID, &t.BuyerID, &t.PaymentID, &t.Price, &t.Status, &t.Code, &t.CreatedAt, &t.PaidAt, &t.UsedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}

func (r *ticketRepo) Save(ctx context.Context, tx repository.Tx, t *model.EventTicket) error {
	const q = `
INSERT INTO event_tickets (` + ticketCols + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  payment_id=$4, status=$6, paid_at=$9, used_at=$10;`

	_, err := execSQL(ctx, r.pool, tx, q, t.ID, t.EventID, t.BuyerID, t.PaymentID, t.Price, t.Status, t.Code, t.CreatedAt, t.PaidAt, t.UsedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *ticketRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.EventTicket, error) {
	q := `SELECT ` + ticketCols + ` FROM event_tickets WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanTicket(row)
}

func (r *ticketRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.EventTicket, error) {
	const q = `SELECT ` + ticketCols + ` FROM event_tickets WHERE payment_id=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, paymentID)
	if err != nil {
		return nil, err
	}
	return scanTicket(row)
}

func (r *ticketRepo) ListByBuyer(ctx context.Context, tx repository.Tx, buyerID string) ([]*model.EventTicket, error) {
	const q = `SELECT ` + ticketCols + ` FROM event_tickets WHERE buyer_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, buyerID)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (r *ticketRepo) ListByEvent(ctx context.Context, tx repository.Tx, eventID string) ([]*model.EventTicket, error) {
	const q = `SELECT ` + ticketCols + ` FROM event_tickets WHERE event_id=$1 ORDER BY created_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, eventID)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()
	return collectTickets(rows)
}

func collectTickets(rows pgx.Rows) ([]*model.EventTicket, error) {
	var out []*model.EventTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
