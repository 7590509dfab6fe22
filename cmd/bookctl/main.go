// bookctl exercises the catalog API from the command line: tabular
// listings, CRUD wrappers, library statistics and a scripted demo run.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"bookcatalog/internal/apiclient"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	_ = godotenv.Load(".env.local")
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}

	client := apiclient.New(baseURL)
	ctx := context.Background()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "list":
		err = runList(ctx, client, args)
	case "get":
		err = runGet(ctx, client, args)
	case "add":
		err = runAdd(ctx, client, args)
	case "update":
		err = runUpdate(ctx, client, args)
	case "delete":
		err = runDelete(ctx, client, args)
	case "status":
		err = runStatus(ctx, client)
	case "stats":
		err = runStats(ctx, client)
	case "demo":
		err = runDemo(ctx, client)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			_ = printJSON(os.Stderr, apiErr.Body)
		}
		log.Fatalf("bookctl %s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: bookctl <command> [flags]

Commands:
  list     show the catalog as a table (-author, -search filters)
  get      fetch one book (-id)
  add      create a book (-title, -author, -year)
  update   update fields of a book (-id, -data JSON object)
  delete   delete a book (-id)
  status   show the API status payload
  stats    show library statistics
  demo     run the scripted API exercise`)
}

func runList(ctx context.Context, client *apiclient.Client, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	author := fs.String("author", "", "filter by author substring")
	search := fs.String("search", "", "filter by title or author substring")
	_ = fs.Parse(args)

	res, err := client.List(ctx, *author, *search)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tYEAR")
	for _, b := range res.Books {
		year := ""
		if b.Year != nil {
			year = fmt.Sprintf("%d", *b.Year)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, year)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d book(s)\n", res.Count)
	return nil
}

func runGet(ctx context.Context, client *apiclient.Client, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	id := fs.Int("id", 0, "book id")
	_ = fs.Parse(args)

	book, err := client.Get(ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, book)
}

func runAdd(ctx context.Context, client *apiclient.Client, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "book title")
	author := fs.String("author", "", "book author")
	year := fs.Int("year", 0, "publication year (optional)")
	_ = fs.Parse(args)

	var yearPtr *int
	if *year != 0 {
		yearPtr = year
	}

	res, err := client.Create(ctx, *title, *author, yearPtr)
	if err != nil {
		return err
	}
	fmt.Println(res.Message)
	return printJSON(os.Stdout, res.Book)
}

func runUpdate(ctx context.Context, client *apiclient.Client, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.Int("id", 0, "book id")
	data := fs.String("data", "", "JSON object with the fields to change")
	_ = fs.Parse(args)

	var fields map[string]any
	if err := json.Unmarshal([]byte(*data), &fields); err != nil {
		return fmt.Errorf("-data must be a JSON object: %w", err)
	}

	res, err := client.Update(ctx, *id, fields)
	if err != nil {
		return err
	}
	fmt.Println(res.Message)
	return printJSON(os.Stdout, res.Book)
}

func runDelete(ctx context.Context, client *apiclient.Client, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.Int("id", 0, "book id")
	_ = fs.Parse(args)

	res, err := client.Delete(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Println(res.Message)
	return printJSON(os.Stdout, res.DeletedBook)
}

func runStatus(ctx context.Context, client *apiclient.Client) error {
	status, err := client.Status(ctx)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, status)
}

func runStats(ctx context.Context, client *apiclient.Client) error {
	res, err := client.List(ctx, "", "")
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, computeStats(res.Books))
}

// runDemo replays a scripted conversation with the API, printing the
// outcome of every step, including the expected failures.
func runDemo(ctx context.Context, client *apiclient.Client) error {
	step := func(n int, title string) {
		fmt.Printf("\n%d. %s\n%s\n", n, title, strings.Repeat("-", 50))
	}
	report := func(v any, err error) {
		var apiErr *apiclient.APIError
		switch {
		case errors.As(err, &apiErr):
			fmt.Printf("status %d\n", apiErr.StatusCode)
			_ = printJSON(os.Stdout, apiErr.Body)
		case err != nil:
			fmt.Printf("request failed: %v\n", err)
		default:
			_ = printJSON(os.Stdout, v)
		}
	}

	step(1, "GET /books")
	list, err := client.List(ctx, "", "")
	report(list, err)
	if err != nil {
		return err
	}

	step(2, "GET /books/1")
	book, err := client.Get(ctx, 1)
	report(book, err)

	step(3, "GET /books/999 (missing)")
	book, err = client.Get(ctx, 999)
	report(book, err)

	step(4, "POST /books (duplicate of an existing book)")
	var created *apiclient.BookResponse
	if len(list.Books) > 0 {
		created, err = client.Create(ctx, list.Books[0].Title, list.Books[0].Author, nil)
	} else {
		created, err = client.Create(ctx, "Pnin", "Vladimir Nabokov", nil)
	}
	report(created, err)

	step(5, "POST /books (missing required fields)")
	created, err = client.Create(ctx, "", "", nil)
	report(created, err)

	step(6, "GET /status")
	status, err := client.Status(ctx)
	report(status, err)
	return nil
}

func printJSON(w *os.File, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
