package api

import (
	"time"

	"oilmap/typedef"
)

// MapSummary is one row of the map list.
type MapSummary struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MapData is the graph part of the persisted payload.
type MapData struct {
	Points      []typedef.Point      `json:"points"`
	Connections []typedef.Connection `json:"connections"`
}

// MapPayload is the wholesale map record exchanged with the backend on
// create, update and get. MyAllianceStart is nullable on the wire.
type MapPayload struct {
	Name            string     `json:"name"`
	Data            MapData    `json:"data"`
	DurationDays    int        `json:"duration_days"`
	StartTime       *time.Time `json:"start_time"`
	IsRunning       bool       `json:"is_running"`
	MyAllianceStart *int       `json:"my_alliance_start_id"`
	TotalOil        int        `json:"total_oil"`
	LastOilUpdate   *time.Time `json:"last_oil_update"`
}

// MapRecord is a full map as returned by get.
type MapRecord struct {
	ID int `json:"id"`
	MapPayload
}

// BattlePoint is a contested point the backend wants a result for.
type BattlePoint struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Oil   int    `json:"oil"`
}

// ExpandResponse is the result of a territory expansion. A message of
// MessageResolveRequired means pending battles must be resolved before
// expansion can run again.
type ExpandResponse struct {
	Points       []typedef.Point `json:"points"`
	BattlePoints []BattlePoint   `json:"battle_points"`
	Message      string          `json:"message"`
}

// MessageResolveRequired is the expand response message that blocks
// further expansion until all listed battles carry a result.
const MessageResolveRequired = "resolve_required"

// BattleResult is a per-point outcome submitted to resolve.
type BattleResult string

const (
	BattleWon  BattleResult = "won"
	BattleLost BattleResult = "lost"
)

type resolveRequest struct {
	BattleResults map[string]BattleResult `json:"battle_results"`
}

type resolveResponse struct {
	Points []typedef.Point `json:"points"`
}

type createResponse struct {
	ID int `json:"id"`
}

// BuildPayload assembles a wire payload from session state. An
// allianceStart below zero serializes as null. The graph is copied:
// payloads are marshaled on background save goroutines while the
// session keeps editing the live slices.
func BuildPayload(points []typedef.Point, connections []typedef.Connection, s *typedef.MapSettings) MapPayload {
	var alliance *int
	if s.MyAllianceStart >= 0 {
		idx := s.MyAllianceStart
		alliance = &idx
	}
	ps := make([]typedef.Point, len(points))
	copy(ps, points)
	cs := make([]typedef.Connection, len(connections))
	copy(cs, connections)
	return MapPayload{
		Name:            s.Name,
		Data:            MapData{Points: ps, Connections: cs},
		DurationDays:    s.DurationDays,
		StartTime:       s.StartTime,
		IsRunning:       s.IsRunning,
		MyAllianceStart: alliance,
		TotalOil:        s.TotalOil,
		LastOilUpdate:   s.LastOilUpdate,
	}
}

// Settings converts a loaded record back into session settings.
func (r *MapRecord) Settings() typedef.MapSettings {
	alliance := -1
	if r.MyAllianceStart != nil {
		alliance = *r.MyAllianceStart
	}
	return typedef.MapSettings{
		Name:            r.Name,
		MyAllianceStart: alliance,
		DurationDays:    r.DurationDays,
		StartTime:       r.StartTime,
		IsRunning:       r.IsRunning,
		TotalOil:        r.TotalOil,
		LastOilUpdate:   r.LastOilUpdate,
	}
}
