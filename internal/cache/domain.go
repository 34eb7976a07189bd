// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"context"
	"time"

	"github.com/chanwatch/sidecar/internal/dvrclient"
	"github.com/chanwatch/sidecar/internal/xmltv"
)

// ChannelCache is the read-through cache over DVRClient.ListChannels
// (spec §4.2, default TTL 24h).
type ChannelCache struct {
	c      *Cache[[]dvrclient.Channel]
	client *dvrclient.Client
}

func NewChannelCache(client *dvrclient.Client, ttl time.Duration) *ChannelCache {
	return &ChannelCache{c: New[[]dvrclient.Channel](ttl), client: client}
}

func (c *ChannelCache) List(ctx context.Context) ([]dvrclient.Channel, error) {
	return c.c.Get(ctx, c.client.ListChannels)
}

// Lookup returns the channel matching number, and whether it was found.
func (c *ChannelCache) Lookup(ctx context.Context, number string) (dvrclient.Channel, bool) {
	chans, err := c.List(ctx)
	if err != nil {
		return dvrclient.Channel{}, false
	}
	for _, ch := range chans {
		if ch.Number == number {
			return ch, true
		}
	}
	return dvrclient.Channel{}, false
}

// JobCache is the read-through cache over DVRClient.ListJobs (default
// TTL 1h).
type JobCache struct {
	c      *Cache[[]dvrclient.Job]
	client *dvrclient.Client
}

func NewJobCache(client *dvrclient.Client, ttl time.Duration) *JobCache {
	return &JobCache{c: New[[]dvrclient.Job](ttl), client: client}
}

func (c *JobCache) List(ctx context.Context) ([]dvrclient.Job, error) {
	return c.c.Get(ctx, c.client.ListJobs)
}

func (c *JobCache) Invalidate() { c.c.Invalidate() }

func (c *JobCache) Lookup(ctx context.Context, id string) (dvrclient.Job, bool) {
	jobs, err := c.List(ctx)
	if err != nil {
		return dvrclient.Job{}, false
	}
	for _, j := range jobs {
		if j.ID == id {
			return j, true
		}
	}
	return dvrclient.Job{}, false
}

// VODCache is the read-through cache over DVRClient.ListVOD (default
// TTL 24h).
type VODCache struct {
	c      *Cache[[]dvrclient.VODItem]
	client *dvrclient.Client
}

func NewVODCache(client *dvrclient.Client, ttl time.Duration) *VODCache {
	return &VODCache{c: New[[]dvrclient.VODItem](ttl), client: client}
}

func (c *VODCache) List(ctx context.Context) ([]dvrclient.VODItem, error) {
	return c.c.Get(ctx, c.client.ListVOD)
}

func (c *VODCache) Lookup(ctx context.Context, fileID string) (dvrclient.VODItem, bool) {
	items, err := c.List(ctx)
	if err != nil {
		return dvrclient.VODItem{}, false
	}
	for _, it := range items {
		if it.FileID == fileID {
			return it, true
		}
	}
	return dvrclient.VODItem{}, false
}

// ProgramCache is the read-through cache over the XMLTV guide (default
// TTL 24h). The guide itself stores an ordered program list per channel
// (spec §4.2); this cache just bounds how often we re-fetch/re-parse it.
type ProgramCache struct {
	c      *Cache[*xmltv.Guide]
	client *dvrclient.Client
	loc    *time.Location
}

func NewProgramCache(client *dvrclient.Client, loc *time.Location, ttl time.Duration) *ProgramCache {
	return &ProgramCache{c: New[*xmltv.Guide](ttl), client: client, loc: loc}
}

func (c *ProgramCache) guide(ctx context.Context) (*xmltv.Guide, error) {
	return c.c.Get(ctx, func(ctx context.Context) (*xmltv.Guide, error) {
		body, err := c.client.FetchXMLTV(ctx)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		return xmltv.Parse(body, c.loc)
	})
}

// Current returns the program airing now on the channel with the given
// XMLTV channel id.
func (c *ProgramCache) Current(ctx context.Context, channelID string, now time.Time) (xmltv.Program, bool) {
	g, err := c.guide(ctx)
	if err != nil || g == nil {
		return xmltv.Program{}, false
	}
	return g.Current(channelID, now)
}
