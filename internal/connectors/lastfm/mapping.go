package lastfm

import (
	"strings"

	"github.com/artisnova/aria/internal/core/domain"
)

// Wire shapes for the Last.fm 2.0 API. The three get-info methods share
// one response envelope with a different top-level key each.

type infoResponse struct {
	Error   int    `json:"error"`
	Message string `json:"message"`

	Artist *artistInfo `json:"artist"`
	Album  *albumInfo  `json:"album"`
	Track  *trackInfo  `json:"track"`
}

type artistInfo struct {
	Name string     `json:"name"`
	MBID string     `json:"mbid"`
	Bio  *wikiText  `json:"bio"`
	Tags *tagList   `json:"tags"`
	Imgs []imageRef `json:"image"`
}

type albumInfo struct {
	Name   string     `json:"name"`
	Artist string     `json:"artist"`
	MBID   string     `json:"mbid"`
	Wiki   *wikiText  `json:"wiki"`
	Tags   *tagList   `json:"tags"`
	Imgs   []imageRef `json:"image"`
	Tracks *trackList `json:"tracks"`
}

type trackInfo struct {
	Name    string    `json:"name"`
	MBID    string    `json:"mbid"`
	Artist  *nameRef  `json:"artist"`
	Wiki    *wikiText `json:"wiki"`
	TopTags *tagList  `json:"toptags"`
}

type wikiText struct {
	Summary string `json:"summary"`
}

type tagList struct {
	Tag []nameRef `json:"tag"`
}

type trackList struct {
	Track []albumTrack `json:"track"`
}

type albumTrack struct {
	Name     string      `json:"name"`
	Duration int         `json:"duration"`
	Attr     *rankedAttr `json:"@attr"`
}

type rankedAttr struct {
	Rank int `json:"rank"`
}

type nameRef struct {
	Name string `json:"name"`
}

type imageRef struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

func mapInfoResponse(entityType domain.EntityType, resp infoResponse) domain.CanonicalRecord {
	switch entityType {
	case domain.EntityArtist:
		if resp.Artist == nil {
			return domain.CanonicalRecord{Type: entityType}
		}
		return domain.CanonicalRecord{
			Type:        domain.EntityArtist,
			Name:        resp.Artist.Name,
			Biography:   wikiSummary(resp.Artist.Bio),
			Tags:        tagNames(resp.Artist.Tags),
			Images:      bestImages(resp.Artist.Imgs),
			ExternalIDs: externalID(resp.Artist.MBID, resp.Artist.Name),
		}
	case domain.EntityAlbum:
		if resp.Album == nil {
			return domain.CanonicalRecord{Type: entityType}
		}
		record := domain.CanonicalRecord{
			Type:        domain.EntityAlbum,
			Name:        resp.Album.Name,
			Artist:      resp.Album.Artist,
			Biography:   wikiSummary(resp.Album.Wiki),
			Tags:        tagNames(resp.Album.Tags),
			Images:      bestImages(resp.Album.Imgs),
			ExternalIDs: externalID(resp.Album.MBID, resp.Album.Name),
		}
		if resp.Album.Tracks != nil {
			for i, t := range resp.Album.Tracks.Track {
				position := i + 1
				if t.Attr != nil && t.Attr.Rank > 0 {
					position = t.Attr.Rank
				}
				record.Tracks = append(record.Tracks, domain.Track{
					Position:    position,
					Title:       t.Name,
					DurationSec: t.Duration,
				})
			}
		}
		return record
	case domain.EntityTrack:
		if resp.Track == nil {
			return domain.CanonicalRecord{Type: entityType}
		}
		record := domain.CanonicalRecord{
			Type:        domain.EntityTrack,
			Name:        resp.Track.Name,
			Biography:   wikiSummary(resp.Track.Wiki),
			Tags:        tagNames(resp.Track.TopTags),
			ExternalIDs: externalID(resp.Track.MBID, resp.Track.Name),
		}
		if resp.Track.Artist != nil {
			record.Artist = resp.Track.Artist.Name
		}
		return record
	}
	return domain.CanonicalRecord{Type: entityType}
}

// wikiSummary strips the "Read more" link markup Last.fm appends to its
// wiki summaries.
func wikiSummary(w *wikiText) string {
	if w == nil {
		return ""
	}
	summary := w.Summary
	if idx := strings.Index(summary, "<a href="); idx > 0 {
		summary = summary[:idx]
	}
	return strings.TrimSpace(summary)
}

func tagNames(tags *tagList) []string {
	if tags == nil {
		return nil
	}
	var names []string
	for _, tag := range tags.Tag {
		if tag.Name != "" {
			names = append(names, tag.Name)
		}
	}
	return names
}

// bestImages returns image URLs largest first. Last.fm lists sizes
// small-to-large, so the order is reversed.
func bestImages(images []imageRef) []string {
	var urls []string
	for i := len(images) - 1; i >= 0; i-- {
		if images[i].URL != "" {
			urls = append(urls, images[i].URL)
		}
	}
	return urls
}

// externalID keys the entry by MBID when Last.fm carries one, falling
// back to the catalog's name-based addressing.
func externalID(mbid, name string) map[string]string {
	switch {
	case mbid != "":
		return map[string]string{"lastfm": mbid}
	case name != "":
		return map[string]string{"lastfm": name}
	}
	return nil
}
