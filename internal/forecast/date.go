package forecast

import (
	"fmt"
	"time"
)

// DateLayout — формат календарной даты во входных и выходных данных.
const DateLayout = "2006-01-02"

// Date — календарная дата без времени суток и часового пояса.
// Вся арифметика дат в движке идет только через методы этого типа,
// чтобы исключить сдвиги из-за перехода на летнее время.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate создает дату с нормализацией через time.Date.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate разбирает дату в формате 2006-01-02.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf отбрасывает время суток и часовой пояс из time.Time.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String возвращает дату в формате 2006-01-02.
func (d Date) String() string {
	return d.time().Format(DateLayout)
}

// MarshalJSON сериализует дату строкой 2006-01-02.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON разбирает дату из строки 2006-01-02.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return fmt.Errorf("invalid date literal %s", raw)
	}

	parsed, err := ParseDate(raw[1 : len(raw)-1])
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// IsZero сообщает, что дата не задана.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Before сообщает, что d раньше other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After сообщает, что d позже other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// Equal сообщает, что даты совпадают.
func (d Date) Equal(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// Compare возвращает -1, 0 или 1 при сравнении d с other.
func (d Date) Compare(other Date) int {
	if d.Before(other) {
		return -1
	}
	if d.After(other) {
		return 1
	}
	return 0
}

// AddDays возвращает дату со сдвигом на days календарных дней.
func (d Date) AddDays(days int) Date {
	t := d.time().AddDate(0, 0, days)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DaysBetween возвращает разницу между датами в календарных днях.
// Считается по полуночи UTC, а не по стенным часам.
func DaysBetween(from, to Date) int {
	return int(to.time().Sub(from.time()).Hours() / 24)
}

// DaysInMonth возвращает число дней в месяце с учетом високосного года.
func DaysInMonth(year int, month time.Month) int {
	// День 0 следующего месяца — последний день текущего.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDayOfMonth прижимает день к длине месяца:
// 31-е число в феврале превращается в 28-е или 29-е.
func ClampDayOfMonth(year int, month time.Month, day int) Date {
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return Date{Year: year, Month: month, Day: day}
}

// AddMonthsClamped сдвигает дату на months месяцев, удерживая исходный
// день месяца и прижимая его к длине целевого месяца. В отличие от
// time.AddDate, 31 января + 1 месяц дает 28/29 февраля, а не 2/3 марта.
func AddMonthsClamped(d Date, months int, anchorDay int) Date {
	total := int(d.Month) - 1 + months
	year := d.Year + total/12
	monthIndex := total % 12
	if monthIndex < 0 {
		monthIndex += 12
		year--
	}
	return ClampDayOfMonth(year, time.Month(monthIndex+1), anchorDay)
}

// IsWeekend сообщает, что дата приходится на субботу или воскресенье.
func (d Date) IsWeekend() bool {
	wd := d.time().Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// NextBusinessDay возвращает ближайший рабочий день начиная с d.
func (d Date) NextBusinessDay() Date {
	next := d
	for next.IsWeekend() {
		next = next.AddDays(1)
	}
	return next
}
