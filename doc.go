// Package applaunch launches an application under test, waits until it
// accepts TCP connections and tears it down deterministically afterwards.
//
// # Basic Usage
//
//	import "github.com/giantswarm/applaunch"
//
//	type appContext struct{ Port int }
//
//	var server = applaunch.Define(applaunch.Definition[appContext]{
//	    Context: func(context.Context) (appContext, error) {
//	        port, err := applaunch.RandomPort()
//	        return appContext{Port: port}, err
//	    },
//	    Env: func(_ context.Context, c appContext) (map[string]string, error) {
//	        return map[string]string{"PORT": strconv.Itoa(c.Port)}, nil
//	    },
//	    Command: func(context.Context, appContext, map[string]string) (string, error) {
//	        return "./bin/server --log-level debug", nil
//	    },
//	    URL: func(_ context.Context, in applaunch.URLInput[appContext]) (string, error) {
//	        return fmt.Sprintf("http://localhost:%d", in.Context.Port), nil
//	    },
//	})
//
//	func TestServer(t *testing.T) {
//	    app := server.RunTB(t)
//	    u, _ := app.URL()
//	    resp, err := http.Get(u.String() + "/health")
//	    // ...
//	}
//
// Run resolves the context, then the environment layers (the Extends chain,
// the launcher's own Env and the per-run WithRunEnv, later layers winning),
// then the command. It spawns the process, resolves the URL and waits for the
// URL's port. Any failure after the spawn disposes the process before Run
// returns, so a failed Run never leaks a process.
//
// # Readiness
//
// WaitForPort polls a local TCP port until a connection succeeds. The retry
// budget and the overall timeout race independently: with the defaults (10s
// timeout, 500ms interval, 5 retries) a port that never opens is reported as
// ErrRetriesExhausted after about two seconds, while WithTimeout(100ms)
// reports ErrTimeout after 100ms.
//
// # Teardown
//
// Dispose sends SIGTERM and waits for the process to exit. An exit with
// status 0, or death by that SIGTERM, is a clean stop. A non-zero status is
// returned as an *ExitError. A process still running after the stop timeout
// (WithStopTimeout, default 10s) is killed and ErrKilled is returned.
//
// # Logging
//
// applaunch logs through log/slog. By default it uses slog.Default() with a
// "component" attribute; SetLogger installs a custom logger.
package applaunch
