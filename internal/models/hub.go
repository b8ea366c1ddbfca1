package models

// LinePair is an unordered pair of lines. Use NewLinePair to build keys.
type LinePair struct {
	A string
	B string
}

// NewLinePair orders the two lines so (x, y) and (y, x) produce the same key.
func NewLinePair(x, y string) LinePair {
	if x > y {
		x, y = y, x
	}
	return LinePair{A: x, B: y}
}

// TransferHub is an interchange where two lines can be changed in-station.
type TransferHub struct {
	Name         string           `json:"name"`
	Location     Location         `json:"location"`
	Transfers    map[LinePair]int `json:"-"`
	Priority     int              `json:"priority"`
	UserPriority bool             `json:"userPriority"`
}

// TransferSeconds returns the in-station transfer time between two lines.
func (h TransferHub) TransferSeconds(lineA, lineB string) (int, bool) {
	s, ok := h.Transfers[NewLinePair(lineA, lineB)]
	return s, ok
}
