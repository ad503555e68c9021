package nhlstats

import (
	"strconv"
	"strings"
)

type searchResult struct {
	PlayerID   flexibleID `json:"playerId"`
	Name       string     `json:"name"`
	TeamAbbrev string     `json:"teamAbbrev"`
}

type statsResponse struct {
	Stats []struct {
		Splits []struct {
			Season string    `json:"season"`
			Stat   statBlock `json:"stat"`
		} `json:"splits"`
	} `json:"stats"`
}

type statBlock struct {
	Games            int    `json:"games"`
	Goals            *int   `json:"goals"`
	Shots            *int   `json:"shots"`
	Assists          *int   `json:"assists"`
	TimeOnIcePerGame string `json:"timeOnIcePerGame"`
}

// flexibleID accepts both "8478402" and 8478402.
type flexibleID int64

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*id = 0
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return err
	}
	*id = flexibleID(v)
	return nil
}
