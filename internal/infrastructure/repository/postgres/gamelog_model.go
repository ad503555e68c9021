package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
)

const gameLogTable = "player_game_logs"

type gameLogTableModel struct {
	Name      string          `db:"name"`
	NameKey   string          `db:"name_key"`
	Team      string          `db:"team"`
	Opponent  string          `db:"opponent"`
	GameDate  time.Time       `db:"game_date"`
	SeasonAvg sql.NullFloat64 `db:"season_avg"`
	L5Avg     sql.NullFloat64 `db:"l5_avg"`
	L10Avg    sql.NullFloat64 `db:"l10_avg"`
	TOIText   sql.NullString  `db:"toi_text"`
	TOINumber sql.NullFloat64 `db:"toi_number"`
}

var gameLogSelectColumns = []string{
	"name",
	"name_key",
	"team",
	"opponent",
	"game_date",
	"season_avg",
	"l5_avg",
	"l10_avg",
	"toi_text",
	"toi_number",
}

func (m gameLogTableModel) toRecord(policy gamelog.TOIPolicy) (gamelog.Record, error) {
	raw := gamelog.MissingTOI()
	switch {
	case m.TOIText.Valid:
		raw = gamelog.TOIFromText(m.TOIText.String)
	case m.TOINumber.Valid:
		raw = gamelog.TOIFromNumber(m.TOINumber.Float64)
	}

	return gamelog.NewRecord(gamelog.RecordInput{
		Name:      m.Name,
		Team:      m.Team,
		Opponent:  m.Opponent,
		Date:      m.GameDate,
		SeasonAvg: nullFloat(m.SeasonAvg),
		L5Avg:     nullFloat(m.L5Avg),
		L10Avg:    nullFloat(m.L10Avg),
		TOI:       raw,
	}, policy)
}

func gameLogModelFromRecord(r gamelog.Record) gameLogTableModel {
	m := gameLogTableModel{
		Name:      r.Name,
		NameKey:   r.NameKey(),
		Team:      r.Team,
		Opponent:  r.Opponent,
		GameDate:  r.Date,
		SeasonAvg: toNullFloat(r.SeasonAvg),
		L5Avg:     toNullFloat(r.L5Avg),
		L10Avg:    toNullFloat(r.L10Avg),
	}
	switch r.TOIRaw.Kind {
	case gamelog.TOIText:
		m.TOIText = sql.NullString{String: r.TOIRaw.Text, Valid: true}
	case gamelog.TOINumber:
		m.TOINumber = sql.NullFloat64{Float64: r.TOIRaw.Number, Valid: true}
	}
	return m
}
