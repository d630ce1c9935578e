package booking

import "time"

// DateRange は半開区間 [DateIn, DateOut) の滞在期間を表す
// チェックアウト日と同日のチェックインは重複とみなさない
type DateRange struct {
	DateIn  time.Time
	DateOut time.Time
}

// NewDateRange は滞在期間を作成する
// 日付は UTC の0時に正規化され、DateIn < DateOut でなければならない
func NewDateRange(dateIn, dateOut time.Time) (DateRange, error) {
	in := truncateToDate(dateIn)
	out := truncateToDate(dateOut)
	if !in.Before(out) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{DateIn: in, DateOut: out}, nil
}

// Overlaps は2つの半開区間が重なるかを返す
// [a,b) と [c,d) は a < d かつ c < b のとき重なる
func (r DateRange) Overlaps(other DateRange) bool {
	return r.DateIn.Before(other.DateOut) && other.DateIn.Before(r.DateOut)
}

// Contains は指定日が滞在期間に含まれるかを返す
func (r DateRange) Contains(day time.Time) bool {
	d := truncateToDate(day)
	return !d.Before(r.DateIn) && d.Before(r.DateOut)
}

// Nights は宿泊数を返す
func (r DateRange) Nights() int {
	return int(r.DateOut.Sub(r.DateIn).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Booking は予約エンティティを表す
// 作成後に更新されることはない
type Booking struct {
	ID         string
	GuestID    string
	PropertyID string
	DateIn     time.Time
	DateOut    time.Time
	CreatedAt  time.Time
}

// NewBooking は新しい予約を作成する
func NewBooking(guestID, propertyID string, stay DateRange) *Booking {
	return &Booking{
		GuestID:    guestID,
		PropertyID: propertyID,
		DateIn:     stay.DateIn,
		DateOut:    stay.DateOut,
		CreatedAt:  time.Now(),
	}
}

// Stay は予約の滞在期間を返す
func (b *Booking) Stay() DateRange {
	return DateRange{DateIn: b.DateIn, DateOut: b.DateOut}
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.GuestID == "" {
		return ErrGuestIDRequired
	}
	if b.PropertyID == "" {
		return ErrPropertyIDRequired
	}
	if !b.DateIn.Before(b.DateOut) {
		return ErrInvalidDateRange
	}
	return nil
}
