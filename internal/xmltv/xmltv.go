// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package xmltv parses the DVR's XMLTV guide (spec §4.2): extracting
// <channel id lcn> -> channel-id mapping and <programme> entries, with
// times converted to a configured local zone and stored as Unix seconds.
package xmltv

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
)

// Program is one guide entry for a channel.
type Program struct {
	Start int64
	Stop  int64
	Title string
	Desc  string
	Icon  string
}

// Guide maps a channel id to its ordered program list.
type Guide struct {
	Channels map[string]string    // channel id -> display name (from <channel>)
	Programs map[string][]Program // channel id -> ordered programs
}

type xmltvDoc struct {
	Channels   []xmltvChannel   `xml:"channel"`
	Programmes []xmltvProgramme `xml:"programme"`
}

type xmltvChannel struct {
	ID          string `xml:"id,attr"`
	DisplayName string `xml:"display-name"`
	LCN         string `xml:"lcn"`
}

type xmltvProgramme struct {
	Start   string `xml:"start,attr"`
	Stop    string `xml:"stop,attr"`
	Channel string `xml:"channel,attr"`
	Title   string `xml:"title"`
	Desc    string `xml:"desc"`
	Icon    struct {
		Src string `xml:"src,attr"`
	} `xml:"icon"`
}

// xmltvTimeLayout matches Channels DVR's "20060102150405 -0700" format.
const xmltvTimeLayout = "20060102150405 -0700"

// Parse reads r as XMLTV and converts all programme times into loc.
func Parse(r io.Reader, loc *time.Location) (*Guide, error) {
	var doc xmltvDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("xmltv: decode: %w", err)
	}

	g := &Guide{
		Channels: make(map[string]string, len(doc.Channels)),
		Programs: make(map[string][]Program),
	}
	for _, c := range doc.Channels {
		name := c.DisplayName
		if name == "" {
			name = c.LCN
		}
		g.Channels[c.ID] = name
	}

	for _, p := range doc.Programmes {
		start, err := parseTime(p.Start, loc)
		if err != nil {
			continue
		}
		stop, err := parseTime(p.Stop, loc)
		if err != nil {
			continue
		}
		g.Programs[p.Channel] = append(g.Programs[p.Channel], Program{
			Start: start,
			Stop:  stop,
			Title: p.Title,
			Desc:  p.Desc,
			Icon:  p.Icon.Src,
		})
	}
	return g, nil
}

func parseTime(s string, loc *time.Location) (int64, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(xmltvTimeLayout, s, loc)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// Current returns the program airing at now on channel id, scanning for
// the entry where start <= now < stop (spec §4.2).
func (g *Guide) Current(channelID string, now time.Time) (Program, bool) {
	n := now.Unix()
	for _, p := range g.Programs[channelID] {
		if p.Start <= n && n < p.Stop {
			return p, true
		}
	}
	return Program{}, false
}
