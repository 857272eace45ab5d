// blogcli exercises the client end to end against a running backend:
// listing, watching (polling), searching, and ownership-gated create, edit
// and delete of posts.
package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"blog-client/internal/entity"
	"blog-client/internal/imageset"
	"blog-client/internal/repo/remote"
	"blog-client/internal/usecase"
	"blog-client/pkg/api"
	"blog-client/pkg/auth"
	"blog-client/pkg/config"
	"blog-client/pkg/logger"
)

const usage = `usage: blogcli <command> [flags]

commands:
  list                     print the current post collection
  watch                    poll the collection until interrupted
  search <query>           server-side free-text search
  create [flags]           publish a new post (requires BLOG_EMAIL/BLOG_PASSWORD)
  edit -id <id> [flags]    update an owned post
  delete <id>              delete an owned post

filters for list/watch:
  -category <v>            show posts matching the category
  -subcategory <v>         show posts matching the subcategory
`

type imageList []string

func (l *imageList) String() string { return strings.Join(*l, ",") }

func (l *imageList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type app struct {
	cfg     *config.Config
	log     *logger.Logger
	session *auth.Session
	repo    remote.PostRepository
	store   *usecase.PostStore
	engine  *usecase.FilterEngine
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New()

	client, err := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, log)
	if err != nil {
		log.Error("invalid API base URL: %v", err)
		os.Exit(1)
	}

	repo := remote.NewPostRepository(client, log)
	a := &app{
		cfg:     cfg,
		log:     log,
		session: auth.NewSession(client, log),
		repo:    repo,
		store:   usecase.NewPostStore(repo, log, cfg.PollInterval),
		engine:  usecase.NewFilterEngine(repo, log),
	}

	ctx := context.Background()
	command, args := os.Args[1], os.Args[2:]

	switch command {
	case "list":
		err = a.list(ctx, args)
	case "watch":
		err = a.watch(ctx, args)
	case "search":
		err = a.search(ctx, args)
	case "create":
		err = a.create(ctx, args)
	case "edit":
		err = a.edit(ctx, args)
	case "delete":
		err = a.delete(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error("%s failed: %v", command, err)
		os.Exit(1)
	}
}

func (a *app) signIn(ctx context.Context) error {
	email := os.Getenv("BLOG_EMAIL")
	password := os.Getenv("BLOG_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("BLOG_EMAIL and BLOG_PASSWORD must be set for this command")
	}
	return a.session.SignIn(ctx, email, password)
}

func selectionFlags(fs *flag.FlagSet) *usecase.Selection {
	sel := &usecase.Selection{}
	fs.StringVar(&sel.Category, "category", "", "category filter")
	fs.StringVar(&sel.Subcategory, "subcategory", "", "subcategory filter")
	return sel
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	sel := selectionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.store.Refresh(ctx); err != nil {
		return err
	}
	printPosts(a.engine.Visible(a.store.Snapshot(), *sel))
	return nil
}

func (a *app) watch(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	sel := selectionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a.store.Activate()
	defer a.store.Deactivate()
	a.log.Info("polling %s every %s", a.cfg.APIBaseURL, a.cfg.PollInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			return nil
		case <-ticker.C:
			if err := a.store.LastError(); err != nil {
				a.log.Warn("showing stale data: %v", err)
			}
			printPosts(a.engine.Visible(a.store.Snapshot(), *sel))
		}
	}
}

func (a *app) search(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("search needs a query")
	}

	if err := a.engine.Search(ctx, strings.Join(args, " ")); err != nil {
		return err
	}
	printPosts(a.engine.Visible(nil, usecase.Selection{}))
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	var images imageList
	title := fs.String("title", "", "post title")
	summary := fs.String("summary", "", "preview blurb")
	description := fs.String("description", "", "expanded body")
	category := fs.String("category", "", "one of: "+strings.Join(entity.Categories, ", "))
	subcategory := fs.String("subcategory", "", "one of: "+strings.Join(entity.Subcategories, ", "))
	fs.Var(&images, "image", "image file to attach (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.signIn(ctx); err != nil {
		return err
	}
	user, _ := a.session.CurrentUser()

	session := usecase.NewCreateSession(a.repo, user, a.log)
	session.Fields.Title = *title
	session.Fields.Summary = *summary
	session.Fields.Description = *description
	session.Fields.Category = *category
	session.Fields.Subcategory = *subcategory

	locals, err := loadImages(images)
	if err != nil {
		return err
	}
	session.Images().Append(locals...)

	if err := session.Submit(ctx); err != nil {
		return err
	}
	a.log.Info("post published; the listing reflects it after the next refresh")
	return nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	var images imageList
	id := fs.String("id", "", "post id")
	title := fs.String("title", "", "post title")
	summary := fs.String("summary", "", "preview blurb")
	description := fs.String("description", "", "expanded body")
	category := fs.String("category", "", "category")
	subcategory := fs.String("subcategory", "", "subcategory")
	fs.Var(&images, "image", "image file to attach (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("edit needs -id")
	}

	if err := a.signIn(ctx); err != nil {
		return err
	}
	user, _ := a.session.CurrentUser()

	post, err := a.findPost(ctx, *id)
	if err != nil {
		return err
	}
	if !a.session.CanEdit(post) {
		return fmt.Errorf("post %s belongs to %s", post.ID, post.AuthorEmail)
	}

	session := usecase.NewEditSession(a.repo, user, *post, a.log)
	applyIfSet(fs, map[string]*string{
		"title":       title,
		"summary":     summary,
		"description": description,
		"category":    category,
		"subcategory": subcategory,
	}, session)

	locals, err := loadImages(images)
	if err != nil {
		return err
	}
	session.Images().Append(locals...)

	return session.Submit(ctx)
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("delete needs exactly one post id")
	}

	if err := a.signIn(ctx); err != nil {
		return err
	}
	user, _ := a.session.CurrentUser()

	post, err := a.findPost(ctx, args[0])
	if err != nil {
		return err
	}
	if !a.session.CanEdit(post) {
		return fmt.Errorf("post %s belongs to %s", post.ID, post.AuthorEmail)
	}

	session := usecase.NewEditSession(a.repo, user, *post, a.log)
	return session.Delete(ctx)
}

func (a *app) findPost(ctx context.Context, id string) (*entity.Post, error) {
	posts, err := a.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID == id {
			return &posts[i], nil
		}
	}
	return nil, fmt.Errorf("post %s not found", id)
}

// applyIfSet copies only the flags the user actually passed, so an edit
// with no field flags leaves the seeded values untouched.
func applyIfSet(fs *flag.FlagSet, values map[string]*string, session *usecase.FormSession) {
	targets := map[string]*string{
		"title":       &session.Fields.Title,
		"summary":     &session.Fields.Summary,
		"description": &session.Fields.Description,
		"category":    &session.Fields.Category,
		"subcategory": &session.Fields.Subcategory,
	}
	fs.Visit(func(f *flag.Flag) {
		if dst, ok := targets[f.Name]; ok {
			*dst = *values[f.Name]
		}
	})
}

func loadImages(paths []string) ([]imageset.Local, error) {
	var locals []imageset.Local
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", path, err)
		}
		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		locals = append(locals, imageset.Local{
			Name:        filepath.Base(path),
			ContentType: contentType,
			Data:        data,
		})
	}
	return locals, nil
}

func printPosts(posts []entity.Post) {
	if len(posts) == 0 {
		fmt.Println("no posts found")
		return
	}
	for _, p := range posts {
		fmt.Printf("%s  [%s/%s]  %s — by %s (%d likes, %d views, %d images)\n",
			p.ID, p.Category, p.Subcategory, p.Title, p.Author, p.Likes, p.Views, len(p.Images))
	}
}
