package rod_harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pako-23/browserbench/internal/browser"
	"github.com/pako-23/browserbench/internal/harness"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultNavigationTimeout = 60 * time.Second

	userDataDirFlag = "user-data-dir"
)

var ErrUnsupportedDriver = errors.New("browser cannot be driven over the DevTools protocol")

// Driver implements the harness commands on top of a Chromium based browser
// controlled through Rod.
type Driver struct {
	// The browser being driven.
	attrs browser.Attributes
	// Whether the browser is started without a window.
	headless bool
	// The maximum time to wait for a page to load.
	navigationTimeout time.Duration
	// The directory where screenshots are stored.
	resultDir string
	// The sink for the metrics of the current iteration.
	recorder *harness.Recorder

	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// Option configures a Driver.
type Option func(driver *Driver) error

func WithHeadless(headless bool) Option {
	return func(driver *Driver) error {
		driver.headless = headless
		return nil
	}
}

func WithNavigationTimeout(timeout time.Duration) Option {
	return func(driver *Driver) error {
		if timeout <= 0 {
			return fmt.Errorf("invalid navigation timeout %v", timeout)
		}
		driver.navigationTimeout = timeout
		return nil
	}
}

func WithResultDir(dir string) Option {
	return func(driver *Driver) error {
		driver.resultDir = dir
		return nil
	}
}

func WithRecorder(recorder *harness.Recorder) Option {
	return func(driver *Driver) error {
		driver.recorder = recorder
		return nil
	}
}

// launchFlag translates a configured browser argument to a launcher flag.
// Arguments may be given with or without the leading dashes.
func launchFlag(arg string) (flags.Flag, []string) {
	name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
	if !hasValue {
		return flags.Flag(name), nil
	}

	return flags.Flag(name), []string{value}
}

func newLauncher(attrs browser.Attributes, headless bool) *launcher.Launcher {
	l := launcher.New().Bin(attrs.BinaryPath).Headless(headless)

	for _, arg := range attrs.Args {
		name, values := launchFlag(arg)
		if name == "" {
			continue
		}

		if name == userDataDirFlag && len(values) == 1 {
			l = l.UserDataDir(values[0])
			continue
		}
		l = l.Set(name, values...)
	}

	return l
}

// NewDriver starts the browser and opens the page the commands act on. If
// there is any error, the browser is shut down and the error is returned.
func NewDriver(ctx context.Context, attrs browser.Attributes, options ...Option) (*Driver, error) {
	if attrs.Type != browser.Chrome && attrs.Type != browser.Edge {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, attrs.Type)
	}

	driver := &Driver{
		attrs:             attrs,
		headless:          true,
		navigationTimeout: DefaultNavigationTimeout,
		resultDir:         ".",
	}

	for _, option := range options {
		if err := option(driver); err != nil {
			return nil, err
		}
	}

	if driver.recorder == nil {
		driver.recorder = harness.NewRecorder()
	}

	driver.launcher = newLauncher(attrs, driver.headless).Context(ctx)
	controlURL, err := driver.launcher.Launch()
	if err != nil {
		driver.launcher.Cleanup()
		return nil, fmt.Errorf("failed to launch %s: %w", attrs.BinaryPath, err)
	}
	log.Debugf("launched %s with control url %s", attrs.Type, controlURL)

	driver.browser = rod.New().ControlURL(controlURL).Context(ctx)
	if err := driver.browser.Connect(); err != nil {
		driver.launcher.Kill()
		driver.launcher.Cleanup()
		return nil, fmt.Errorf("failed to connect to %s: %w", attrs.Type, err)
	}

	driver.page, err = driver.browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return driver, nil
}

// Commands exposes the driver as harness commands.
func (d *Driver) Commands() *harness.Commands {
	return &harness.Commands{
		Measure:    d,
		Click:      d,
		Wait:       harness.SleepWaiter{},
		JS:         d,
		Screenshot: d,
		Tabs:       d,
	}
}

// Recorder returns the metric sink of the driver.
func (d *Driver) Recorder() *harness.Recorder {
	return d.recorder
}

// Start navigates to the url and waits for the load event.
func (d *Driver) Start(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, d.navigationTimeout)
	defer cancel()

	start := time.Now()
	page := d.page.Context(navCtx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	log.Debugf("loaded %s in %v", url, time.Since(start))

	return nil
}

// Open loads the url in a new tab and waits for the load event. The page the
// other commands act on is left untouched.
func (d *Driver) Open(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, d.navigationTimeout)
	defer cancel()

	page, err := d.browser.Context(navCtx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return fmt.Errorf("failed to open tab %s: %w", url, err)
	}

	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	log.Debugf("opened tab %s", url)

	return nil
}

func (d *Driver) AddObject(ctx context.Context, metrics map[string]float64) error {
	return d.recorder.AddObject(ctx, metrics)
}

// BySelectorAndWait clicks the first element matching the selector and waits
// for the next page to load.
func (d *Driver) BySelectorAndWait(ctx context.Context, selector string) error {
	navCtx, cancel := context.WithTimeout(ctx, d.navigationTimeout)
	defer cancel()

	page := d.page.Context(navCtx)
	element, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", selector, err)
	}

	wait := page.WaitNavigation(proto.PageLifecycleEventNameLoad)
	if err := element.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	wait()

	return nil
}

// Run evaluates a script body. Scripts return their value with a return
// statement.
func (d *Driver) Run(ctx context.Context, script string) (any, error) {
	res, err := d.page.Context(ctx).Eval(fmt.Sprintf("function() { %s }", script))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate script: %w", err)
	}

	if res.Value.Nil() {
		return nil, nil
	}

	return res.Value.Val(), nil
}

// Take stores a PNG screenshot of the viewport into the screenshots folder
// of the result directory.
func (d *Driver) Take(ctx context.Context, name string) error {
	data, err := d.page.Context(ctx).Screenshot(false, nil)
	if err != nil {
		return fmt.Errorf("failed to take screenshot %s: %w", name, err)
	}

	dir := filepath.Join(d.resultDir, "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dir, name+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save screenshot %s: %w", name, err)
	}
	log.Debugf("saved screenshot %s", path)

	return nil
}

// Close shuts down the browser and removes its temporary profile.
func (d *Driver) Close() error {
	var err error

	if d.browser != nil {
		err = d.browser.Close()
	}

	d.launcher.Kill()
	d.launcher.Cleanup()

	return err
}
