// Package anylist is a client for the AnyList list and recipe service.
// It speaks the service's operation-based sync protocol: every local
// mutation becomes an append-only operation envelope the service applies
// in order, and reads pull a full encoded snapshot that is decoded
// through the schema registry.
package anylist

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lunarhue/anylist/internal/credstore"
	"github.com/lunarhue/anylist/internal/ops"
	"github.com/lunarhue/anylist/internal/push"
	"github.com/lunarhue/anylist/internal/schema"
	"github.com/lunarhue/anylist/internal/session"
	"github.com/lunarhue/anylist/internal/transport"
)

const (
	// DefaultBaseURL is the production service.
	DefaultBaseURL = "https://www.anylist.com"

	userDataEndpoint = "data/user-data/get"
	listenerEndpoint = "data/add-user-listener"
)

// Transport posts to the service's authenticated data endpoints.
// transport.Client is the production implementation; tests substitute a
// recording fake.
type Transport interface {
	Fetch(ctx context.Context, endpoint string) ([]byte, error)
	PostOperations(ctx context.Context, endpoint string, operations []byte) error
}

// env is the shared dependency bundle every entity proxy holds. A single
// instance is shared by all entities of one client, so container ids
// captured from a snapshot propagate to entities created earlier. The
// push channel installs snapshots from its own goroutine, so the
// snapshot-derived fields are guarded by their own lock.
type env struct {
	transport Transport
	enc       *ops.Encoder
	userID    string

	mu sync.RWMutex
	// Captured from the snapshot; empty until the first fetch.
	recipeDataID string
	calendarID   string
	// Current snapshot collections, used to resolve calendar event
	// cross-references.
	recipes []*Recipe
	labels  []*CalendarEventLabel
}

func (e *env) setSnapshot(recipeDataID, calendarID string, recipes []*Recipe, labels []*CalendarEventLabel) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recipeDataID = recipeDataID
	e.calendarID = calendarID
	e.recipes = recipes
	e.labels = labels
}

func (e *env) containerIDs() (recipeDataID, calendarID string) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.recipeDataID, e.calendarID
}

func (e *env) recipeByID(identifier string) *Recipe {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, r := range e.recipes {
		if r.identifier == identifier {
			return r
		}
	}
	return nil
}

func (e *env) labelByID(identifier string) *CalendarEventLabel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, l := range e.labels {
		if l.identifier == identifier {
			return l
		}
	}
	return nil
}

// Options configures a Client. Email and Password are required.
type Options struct {
	Email    string
	Password string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// CredentialsPath names the encrypted token bundle file. Empty
	// disables persistence and every run authenticates from scratch.
	CredentialsPath string
	// HTTPClient defaults to a client with a 30 second timeout.
	HTTPClient *http.Client
	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// Client is the facade over the session, transport, schema registry and
// push channel. Construct with New, authenticate with Login, and stop
// with Teardown.
type Client struct {
	log     *zap.Logger
	base    string
	session *session.Manager
	reg     *schema.Registry
	env     *env
	channel *push.Channel

	mu        sync.Mutex
	loaded    bool
	lists     []*List
	favorites []*List
	recents   map[string][]*Item
	recipes   []*Recipe
	colls     []*RecipeCollection
	events    []*CalendarEvent
	labels    []*CalendarEventLabel
	observers []func([]*List)
}

// New builds a client. It performs no I/O; call Login to authenticate.
func New(opts Options) (*Client, error) {
	if opts.Email == "" || opts.Password == "" {
		return nil, errors.New("anylist: email and password are required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}

	sess := session.New(session.Config{
		Email:    opts.Email,
		Password: opts.Password,
		BaseURL:  base,
		HTTP:     httpc,
		Store:    credstore.New(opts.CredentialsPath, opts.Password, log),
		Logger:   log,
	})
	reg := schema.Default()
	c := &Client{
		log:     log,
		base:    base,
		session: sess,
		reg:     reg,
		env: &env{
			transport: transport.New(transport.Config{
				BaseURL: base,
				HTTP:    httpc,
				Session: sess,
				Logger:  log,
			}),
			enc: ops.NewEncoder(reg),
		},
		recents: map[string][]*Item{},
	}
	return c, nil
}

// Login authenticates the session, reusing a persisted token bundle when
// one decrypts, and opens the push channel.
func (c *Client) Login(ctx context.Context) error {
	if err := c.session.Login(ctx); err != nil {
		return err
	}
	c.startChannel(ctx)
	return nil
}

// Teardown closes the push channel and stops its heartbeat. Call it when
// the program is done with the client.
func (c *Client) Teardown() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
}

// TokenExpiry reports the current access token's expiry claim, when one
// is present. The claim is informational; the service is the authority
// on token validity.
func (c *Client) TokenExpiry() (time.Time, bool) {
	return c.session.TokenExpiry()
}

// OnListsChanged registers an observer for change notifications arriving
// over the push channel. By the time fn runs the refreshed lists are
// already installed on the client.
func (c *Client) OnListsChanged(fn func([]*List)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

func (c *Client) startChannel(ctx context.Context) {
	if c.channel != nil {
		return
	}
	c.channel = push.New(push.Config{
		URL:          strings.Replace(c.base, "http", "ws", 1) + "/" + listenerEndpoint,
		Headers:      c.connectHeaders,
		RefreshToken: c.session.RefreshTokens,
		OnRefresh:    c.refreshAndNotify,
		Logger:       c.log,
	})
	c.channel.Start(ctx)
}

func (c *Client) connectHeaders() http.Header {
	token, _ := c.session.AccessToken()
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	h.Set("X-AnyLeaf-Client-Identifier", c.session.ClientID())
	h.Set("X-AnyLeaf-API-Version", session.APIVersion)
	return h
}

func (c *Client) refreshAndNotify(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	lists := c.lists
	observers := make([]func([]*List), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()
	for _, fn := range observers {
		fn(lists)
	}
	return nil
}

// Refresh fetches the full account snapshot and installs it, replacing
// every cached collection.
func (c *Client) Refresh(ctx context.Context) error {
	raw, err := c.env.transport.Fetch(ctx, userDataEndpoint)
	if err != nil {
		return err
	}
	decoded, err := c.reg.Decode(schema.MsgUserDataResponse, raw)
	if err != nil {
		return err
	}
	c.install(decoded)
	return nil
}

// ensureLoaded fetches the snapshot once; later calls reuse the cache
// until Refresh replaces it.
func (c *Client) ensureLoaded(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()
	if loaded {
		return nil
	}
	return c.Refresh(ctx)
}

// Lists returns the account's shopping lists, fetching the snapshot on
// first use. Call Refresh to force a refetch.
func (c *Client) Lists(ctx context.Context) ([]*List, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lists, nil
}

// ListByID finds a loaded shopping list by identifier, or nil.
func (c *Client) ListByID(identifier string) *List {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lists {
		if l.identifier == identifier {
			return l
		}
	}
	return nil
}

// ListByName finds a loaded shopping list by name, or nil.
func (c *Client) ListByName(name string) *List {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lists {
		if l.name == name {
			return l
		}
	}
	return nil
}

// FavoriteItemsByListID returns the favorites starter list attached to
// the given shopping list, or nil.
func (c *Client) FavoriteItemsByListID(listID string) *List {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.favorites {
		if l.parentID == listID {
			return l
		}
	}
	return nil
}

// RecentItemsByListID returns the recently added items for the given
// shopping list.
func (c *Client) RecentItemsByListID(listID string) []*Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recents[listID]
}

// Recipes returns the account's recipes, fetching the snapshot on first
// use.
func (c *Client) Recipes(ctx context.Context) ([]*Recipe, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recipes, nil
}

// RecipeCollections returns the account's recipe collections, fetching
// the snapshot on first use.
func (c *Client) RecipeCollections(ctx context.Context) ([]*RecipeCollection, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.colls, nil
}

// MealPlanningCalendarEvents returns the account's calendar events,
// fetching the snapshot on first use. Each event's Recipe and Label
// resolve against the same snapshot.
func (c *Client) MealPlanningCalendarEvents(ctx context.Context) ([]*CalendarEvent, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events, nil
}

// MealPlanningCalendarEventLabels returns the calendar's labels.
func (c *Client) MealPlanningCalendarEventLabels(ctx context.Context) ([]*CalendarEventLabel, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.labels, nil
}

// NewItem creates a detached item; attach it with List.AddItem.
func (c *Client) NewItem(f ItemFields) *Item {
	return newItem(f, c.env)
}

// NewRecipe creates a recipe ready to Save. The snapshot is fetched
// first if the recipe-data container id is not known yet.
func (c *Client) NewRecipe(ctx context.Context, f RecipeFields) (*Recipe, error) {
	if recipeDataID, _ := c.env.containerIDs(); recipeDataID == "" {
		if err := c.ensureLoaded(ctx); err != nil {
			return nil, err
		}
	}
	return newRecipe(f, c.env), nil
}

// NewRecipeCollection creates a collection ready to Save.
func (c *Client) NewRecipeCollection(ctx context.Context, f RecipeCollectionFields) (*RecipeCollection, error) {
	if recipeDataID, _ := c.env.containerIDs(); recipeDataID == "" {
		if err := c.ensureLoaded(ctx); err != nil {
			return nil, err
		}
	}
	return newRecipeCollection(f, c.env), nil
}

// NewEvent creates a calendar event ready to Save. The snapshot is
// fetched first if the calendar id is not known yet.
func (c *Client) NewEvent(ctx context.Context, f CalendarEventFields) (*CalendarEvent, error) {
	if _, calendarID := c.env.containerIDs(); calendarID == "" {
		if err := c.ensureLoaded(ctx); err != nil {
			return nil, err
		}
	}
	return newCalendarEvent(f, c.env), nil
}
