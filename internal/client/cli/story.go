package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
	"github.com/DaffaAhmadSM/storymap-cli/internal/filex"
)

// Add collects a new story interactively and appends it to the pending
// queue. The write never touches the network; if the client is online a
// drain pass runs immediately afterwards, otherwise the story waits for the
// next reconnect.
func (a *App) Add(ctx context.Context) error {
	description, err := GetMultiline(a.reader, "Enter story text:", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	lat, err := GetOptionalFloat(a.reader, "Latitude", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	var lon *float64
	if lat != nil {
		lon, err = GetOptionalFloat(a.reader, "Longitude", os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
	}

	payload := models.StoryPayload{Description: description, Lat: lat, Lon: lon}

	photoPath, err := getSimpleText(a.reader, "Photo file (empty to skip)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if photoPath != "" {
		photo, err := filex.LoadPhoto(photoPath)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		payload.Photo = photo.Data
		payload.PhotoName = photo.Name
		payload.PhotoType = photo.Mime
	}

	m, err := a.coordinator.EnqueueOffline(ctx, payload)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Printf("Story queued (#%d)\n", m.Seq)

	if a.monitor.Online() {
		return a.Sync(ctx)
	}
	fmt.Println("Offline: the story will sync when connectivity returns")
	return nil
}

// List shows the story feed. Online, the canonical list is fetched and the
// whole content cache refreshed in one write; offline, the cached copy is
// queried instead and marked as such.
func (a *App) List(ctx context.Context) error {
	return a.list(ctx, models.ListQuery{SortBy: models.SortByNewest})
}

// Map lists only stories carrying coordinates, newest first.
func (a *App) Map(ctx context.Context) error {
	hasLocation := true
	return a.list(ctx, models.ListQuery{HasLocation: &hasLocation, SortBy: models.SortByNewest})
}

func (a *App) list(ctx context.Context, q models.ListQuery) error {
	if a.monitor.Online() {
		if err := a.refreshCache(ctx); err != nil {
			log.Printf("fetch failed, falling back to cache: %v", err)
		}
	} else {
		fmt.Println("Offline: showing cached stories")
	}

	stories, err := a.repos.Stories.Query(ctx, q)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if len(stories) == 0 {
		fmt.Println("No stories")
		return nil
	}
	for _, s := range stories {
		a.printStoryLine(&s)
	}
	return nil
}

// refreshCache replaces the local story snapshot with the server's list.
func (a *App) refreshCache(ctx context.Context) error {
	remote, err := a.api.ListStories(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range remote {
		remote[i].Normalize(now)
	}
	return a.repos.Stories.PutAll(ctx, remote)
}

func (a *App) printStoryLine(s *models.Story) {
	loc := ""
	if s.HasLocation {
		loc = fmt.Sprintf(" @(%.5f, %.5f)", *s.Lat, *s.Lon)
	}
	fmt.Printf("%s  %s  %s%s\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.Name, loc)
}

// Show prints one cached story in full.
func (a *App) Show(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter story id to show", os.Stdout)
	if err != nil {
		return err
	}

	s, err := a.repos.Stories.GetByID(ctx, id)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Println(s.Name)
	fmt.Println(s.Description)
	if s.PhotoURL != "" {
		fmt.Printf("Photo: %s\n", s.PhotoURL)
	}
	if s.HasLocation {
		fmt.Printf("Location: %.5f, %.5f\n", *s.Lat, *s.Lon)
	}
	fmt.Printf("Created: %s\n", s.CreatedAt.Format(time.RFC1123))
	fmt.Printf("Cached:  %s\n", s.CachedAt.Format(time.RFC1123))
	return nil
}

// ClearCache wipes the cached stories and every request-cache partition.
// The pending queue is left alone: unsynced work is never discarded.
func (a *App) ClearCache(ctx context.Context) error {
	if err := a.repos.Stories.Clear(ctx); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if err := a.repos.Cache.Clear(ctx); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Local cache cleared")
	return nil
}
