package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/iliyamo/room-reservation/internal/model"
)

// fakeStore is an in-memory Store whose CreateConfirmed performs the same
// check-then-insert under a mutex that the SQL implementation performs under
// a row lock, so concurrency tests exercise the real invariant.
type fakeStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.Booking
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, rows: make(map[uint64]model.Booking)}
}

func (s *fakeStore) CreateConfirmed(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var same []model.Booking
	for _, r := range s.rows {
		if r.RoomID == b.RoomID {
			same = append(same, r)
		}
	}
	if HasConflict(same, b.CheckIn, b.CheckOut) {
		return ErrRoomUnavailable
	}
	b.ID = s.nextID
	s.nextID++
	s.rows[b.ID] = *b
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, nil
}

func (s *fakeStore) FindConfirmedByRoom(_ context.Context, roomID uint64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, r := range s.rows {
		if r.RoomID == roomID && r.Status == model.BookingConfirmed {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkCancelled(_ context.Context, id uint64, rs model.RefundStatus) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok {
		return model.Booking{}, ErrBookingNotFound
	}
	if b.Status == model.BookingCancelled {
		return b, nil
	}
	b.Status = model.BookingCancelled
	b.RefundStatus = rs
	s.rows[id] = b
	return b, nil
}

type fakeUsers struct{ known map[uint64]bool }

func (f fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	if !f.known[id] {
		return model.User{}, ErrUserNotFound
	}
	return model.User{ID: id}, nil
}

type fakeRooms struct{ known map[uint64]bool }

func (f fakeRooms) GetByID(_ context.Context, id uint64) (model.Room, error) {
	if !f.known[id] {
		return model.Room{}, ErrRoomNotFound
	}
	return model.Room{ID: id}, nil
}

// mockGateway counts Refund calls and returns a scripted outcome.
type mockGateway struct {
	mu     sync.Mutex
	calls  int
	result RefundResult
	err    error
}

func (g *mockGateway) Refund(_ context.Context, _ string, _ float64) (RefundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.result, g.err
}

func (g *mockGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func newTestEngine(gw *mockGateway) (*Engine, *fakeStore) {
	store := newFakeStore()
	e := NewEngine(
		fakeUsers{known: map[uint64]bool{1: true, 2: true}},
		fakeRooms{known: map[uint64]bool{7: true}},
		store,
		gw,
	)
	return e, store
}

func paidRequest(in, out int) CreateRequest {
	return CreateRequest{
		UserID: 1, RoomID: 7,
		CheckIn: day(in), CheckOut: day(out),
		CaptureRef: "CAP-1", Amount: 250,
	}
}

func TestCreateBookingValidation(t *testing.T) {
	e, _ := newTestEngine(&mockGateway{})
	ctx := context.Background()

	if _, err := e.CreateBooking(ctx, CreateRequest{UserID: 1, RoomID: 7, CheckIn: day(5), CheckOut: day(5)}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("equal dates: got %v, want ErrInvalidRange", err)
	}
	if _, err := e.CreateBooking(ctx, CreateRequest{UserID: 1, RoomID: 7, CheckIn: day(6), CheckOut: day(5)}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("reversed dates: got %v, want ErrInvalidRange", err)
	}
	if _, err := e.CreateBooking(ctx, CreateRequest{UserID: 99, RoomID: 7, CheckIn: day(1), CheckOut: day(2)}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user: got %v, want ErrUserNotFound", err)
	}
	if _, err := e.CreateBooking(ctx, CreateRequest{UserID: 1, RoomID: 99, CheckIn: day(1), CheckOut: day(2)}); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("unknown room: got %v, want ErrRoomNotFound", err)
	}
}

func TestCreateBookingStatuses(t *testing.T) {
	e, _ := newTestEngine(&mockGateway{})
	ctx := context.Background()

	paid, err := e.CreateBooking(ctx, paidRequest(1, 5))
	if err != nil {
		t.Fatalf("paid create: %v", err)
	}
	if paid.Status != model.BookingConfirmed || paid.RefundStatus != model.RefundPending {
		t.Errorf("paid booking: got %s/%s, want CONFIRMED/PENDING", paid.Status, paid.RefundStatus)
	}
	if paid.CaptureRef == nil || *paid.CaptureRef != "CAP-1" {
		t.Errorf("paid booking lost its capture ref: %v", paid.CaptureRef)
	}

	free, err := e.CreateBooking(ctx, CreateRequest{UserID: 2, RoomID: 7, CheckIn: day(5), CheckOut: day(8)})
	if err != nil {
		t.Fatalf("unpaid create: %v", err)
	}
	if free.RefundStatus != model.RefundNotApplicable {
		t.Errorf("unpaid booking: got refund status %s, want NOT_APPLICABLE", free.RefundStatus)
	}
	if free.CaptureRef != nil {
		t.Errorf("unpaid booking carries capture ref %q", *free.CaptureRef)
	}
}

func TestCreateBookingConflicts(t *testing.T) {
	e, _ := newTestEngine(&mockGateway{})
	ctx := context.Background()

	if _, err := e.CreateBooking(ctx, paidRequest(1, 5)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := e.CreateBooking(ctx, paidRequest(3, 8)); !errors.Is(err, ErrRoomUnavailable) {
		t.Errorf("overlapping create: got %v, want ErrRoomUnavailable", err)
	}
	// Back-to-back stays share a boundary date and must both succeed.
	if _, err := e.CreateBooking(ctx, paidRequest(5, 9)); err != nil {
		t.Errorf("boundary-touching create: %v", err)
	}
}

func TestConcurrentCreatesOneWinner(t *testing.T) {
	e, _ := newTestEngine(&mockGateway{})
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.CreateBooking(ctx, paidRequest(10, 15))
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrRoomUnavailable):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != attempts-1 {
		t.Errorf("got %d winners and %d conflicts, want 1 and %d", wins, conflicts, attempts-1)
	}
}

func TestCancelWithoutCapture(t *testing.T) {
	gw := &mockGateway{result: RefundResult{Status: "COMPLETED"}}
	e, _ := newTestEngine(gw)
	ctx := context.Background()

	b, err := e.CreateBooking(ctx, CreateRequest{UserID: 1, RoomID: 7, CheckIn: day(1), CheckOut: day(3)})
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.CancelBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != model.BookingCancelled || got.RefundStatus != model.RefundNotApplicable {
		t.Errorf("got %s/%s, want CANCELLED/NOT_APPLICABLE", got.Status, got.RefundStatus)
	}
	if gw.callCount() != 0 {
		t.Errorf("gateway called %d times for an unpaid booking", gw.callCount())
	}
}

func TestCancelWithRefund(t *testing.T) {
	gw := &mockGateway{result: RefundResult{Status: "COMPLETED", RefundID: "R-1"}}
	e, _ := newTestEngine(gw)
	ctx := context.Background()

	b, err := e.CreateBooking(ctx, paidRequest(1, 3))
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.CancelBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != model.BookingCancelled || got.RefundStatus != model.RefundCompleted {
		t.Errorf("got %s/%s, want CANCELLED/COMPLETED", got.Status, got.RefundStatus)
	}
	if gw.callCount() != 1 {
		t.Errorf("gateway called %d times, want 1", gw.callCount())
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	gw := &mockGateway{result: RefundResult{Status: "COMPLETED"}}
	e, _ := newTestEngine(gw)
	ctx := context.Background()

	b, err := e.CreateBooking(ctx, paidRequest(1, 3))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.CancelBooking(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	second, err := e.CancelBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("repeat cancel: %v", err)
	}
	if second.Status != model.BookingCancelled || second.RefundStatus != model.RefundCompleted {
		t.Errorf("repeat cancel changed state: %s/%s", second.Status, second.RefundStatus)
	}
	if gw.callCount() != 1 {
		t.Errorf("gateway called %d times across two cancels, want 1", gw.callCount())
	}
}

func TestCancelSurvivesGatewayError(t *testing.T) {
	gw := &mockGateway{err: errors.New("gateway down")}
	e, _ := newTestEngine(gw)
	ctx := context.Background()

	b, err := e.CreateBooking(ctx, paidRequest(1, 3))
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.CancelBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("cancel must not fail on gateway error, got %v", err)
	}
	if got.Status != model.BookingCancelled || got.RefundStatus != model.RefundFailed {
		t.Errorf("got %s/%s, want CANCELLED/FAILED", got.Status, got.RefundStatus)
	}

	// The room must be bookable again despite the failed refund.
	if _, err := e.CreateBooking(ctx, paidRequest(1, 3)); err != nil {
		t.Errorf("room still blocked after cancel: %v", err)
	}
}

func TestCancelRecordsDeclinedRefund(t *testing.T) {
	gw := &mockGateway{result: RefundResult{Status: "DECLINED"}}
	e, _ := newTestEngine(gw)
	ctx := context.Background()

	b, err := e.CreateBooking(ctx, paidRequest(1, 3))
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.CancelBooking(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.RefundStatus != model.RefundFailed {
		t.Errorf("declined refund recorded as %s, want FAILED", got.RefundStatus)
	}
}

func TestCancelSkipsCompletedRefund(t *testing.T) {
	gw := &mockGateway{result: RefundResult{Status: "COMPLETED"}}
	e, store := newTestEngine(gw)
	ctx := context.Background()

	b, err := e.CreateBooking(ctx, paidRequest(1, 3))
	if err != nil {
		t.Fatal(err)
	}
	// Simulate an out-of-band refund recorded before the cancel arrives.
	store.mu.Lock()
	row := store.rows[b.ID]
	row.RefundStatus = model.RefundCompleted
	store.rows[b.ID] = row
	store.mu.Unlock()

	got, err := e.CancelBooking(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.BookingCancelled || got.RefundStatus != model.RefundCompleted {
		t.Errorf("got %s/%s, want CANCELLED/COMPLETED", got.Status, got.RefundStatus)
	}
	if gw.callCount() != 0 {
		t.Errorf("gateway called %d times for an already-refunded booking", gw.callCount())
	}
}

func TestCancelUnknownBooking(t *testing.T) {
	e, _ := newTestEngine(&mockGateway{})
	if _, err := e.CancelBooking(context.Background(), 404); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("got %v, want ErrBookingNotFound", err)
	}
}

func TestIsRoomAvailable(t *testing.T) {
	e, _ := newTestEngine(&mockGateway{})
	ctx := context.Background()

	if _, err := e.IsRoomAvailable(ctx, 7, day(5), day(5)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("empty range: got %v, want ErrInvalidRange", err)
	}

	free, err := e.IsRoomAvailable(ctx, 7, day(1), day(5))
	if err != nil || !free {
		t.Errorf("empty room: got %v/%v, want true/nil", free, err)
	}

	b, err := e.CreateBooking(ctx, paidRequest(1, 5))
	if err != nil {
		t.Fatal(err)
	}
	free, err = e.IsRoomAvailable(ctx, 7, day(3), day(6))
	if err != nil || free {
		t.Errorf("overlapping range reported available")
	}
	free, err = e.IsRoomAvailable(ctx, 7, day(5), day(8))
	if err != nil || !free {
		t.Errorf("boundary-touching range reported unavailable")
	}

	// Cancelling frees the range again.
	if _, err := e.CancelBooking(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	free, err = e.IsRoomAvailable(ctx, 7, day(3), day(6))
	if err != nil || !free {
		t.Errorf("cancelled booking still blocks the room")
	}
}
