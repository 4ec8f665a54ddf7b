package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
)

var getMultiline = GetMultiline

// List prints stories, optionally only those of author.
func (a *App) List(ctx context.Context, author string) error {
	var list []models.Story
	err := a.withToken(ctx, func(token string) error {
		var err error
		list, err = a.api.ListStories(ctx, token, author)
		return err
	})
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No stories")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCOUNTRY")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Author, s.CountryOrDash())
	}
	return tw.Flush()
}

// Add prompts for a story and creates it.
func (a *App) Add(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}
	country, err := getSimpleText(a.reader, "Country (empty to skip)", a.out)
	if err != nil {
		return err
	}

	in := models.StoryInput{Title: title, Content: content}
	if country != "" {
		in.Country = &country
	}

	var created *models.Story
	err = a.withToken(ctx, func(token string) error {
		var err error
		created, err = a.api.CreateStory(ctx, token, in)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Created", created.ID)
	return nil
}

// Delete removes one of the user's stories.
func (a *App) Delete(ctx context.Context, id string) error {
	err := a.withToken(ctx, func(token string) error {
		return a.api.DeleteStory(ctx, token, id)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted", id)
	return nil
}

// Backfill asks the server to fill in missing story countries.
func (a *App) Backfill(ctx context.Context, country string) error {
	var used string
	err := a.withToken(ctx, func(token string) error {
		var err error
		used, err = a.api.UpdateCountry(ctx, token, country)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Backfill started, missing countries will be set to %s\n", used)
	return nil
}
