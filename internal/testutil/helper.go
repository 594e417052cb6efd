package testutil

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
)

// helperArg marks an invocation of the test binary as the fake application.
const helperArg = "applaunch-test-helper"

// Fake application modes.
const (
	// ModeListen listens on $PORT, answers every connection with one
	// KEY=VALUE line per argument (values from its environment) and exits 0
	// on SIGTERM.
	ModeListen = "listen"

	// ModeTrap listens on $PORT and exits with the code given as its first
	// argument on SIGTERM.
	ModeTrap = "trap"

	// ModeIgnoreTerm listens on $PORT and ignores SIGTERM.
	ModeIgnoreTerm = "ignore-term"

	// ModeExit exits immediately with the code given as its first argument.
	ModeExit = "exit"

	// ModeSleep runs until a signal terminates it.
	ModeSleep = "sleep"

	// ModePrint writes its arguments to stdout, "err: " plus its arguments to
	// stderr, then runs like ModeListen.
	ModePrint = "print"

	// ModeListenLate waits the duration given as its first argument before
	// listening like ModeListen.
	ModeListenLate = "listen-late"

	// ModeExitAfterConnect listens on $PORT and exits with the code given as
	// its first argument shortly after accepting its first connection.
	ModeExitAfterConnect = "exit-after-connect"
)

// helperFailure is the exit code of a fake application that could not run
// its mode.
const helperFailure = 97

// RunHelperIfRequested runs the fake application and exits when the test
// binary was started by HelperCommand. Otherwise it returns immediately.
func RunHelperIfRequested() {
	if len(os.Args) < 3 || os.Args[1] != helperArg {
		return
	}
	os.Exit(runHelper(os.Args[2], os.Args[3:]))
}

func runHelper(mode string, args []string) int {
	switch mode {
	case ModeListen:
		return serve(args, syscall.SIGTERM, 0)
	case ModeTrap:
		code, err := intArg(args)
		if err != nil {
			return fail(err)
		}
		return serve(nil, syscall.SIGTERM, code)
	case ModeIgnoreTerm:
		signal.Ignore(syscall.SIGTERM)
		return serve(nil, syscall.SIGINT, 0)
	case ModeExit:
		code, err := intArg(args)
		if err != nil {
			return fail(err)
		}
		return code
	case ModeSleep:
		for {
			time.Sleep(time.Hour)
		}
	case ModePrint:
		fmt.Fprintln(os.Stdout, args)
		fmt.Fprintln(os.Stderr, "err:", args)
		return serve(nil, syscall.SIGTERM, 0)
	case ModeListenLate:
		if len(args) == 0 {
			return fail(errors.New("missing delay"))
		}
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return fail(err)
		}
		time.Sleep(d)
		return serve(args[1:], syscall.SIGTERM, 0)
	case ModeExitAfterConnect:
		code, err := intArg(args)
		if err != nil {
			return fail(err)
		}
		return exitAfterConnect(code)
	default:
		return fail(fmt.Errorf("unknown mode %q", mode))
	}
}

// serve listens on $PORT until sig arrives, then returns code.
func serve(envKeys []string, sig os.Signal, code int) int {
	port := os.Getenv("PORT")
	if port == "" {
		return fail(errors.New("PORT is not set"))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, sig)

	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", port))
	if err != nil {
		return fail(err)
	}
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			for _, key := range envKeys {
				fmt.Fprintf(conn, "%s=%s\n", key, os.Getenv(key))
			}
			_ = conn.Close()
		}
	}()

	<-stop
	_ = l.Close()
	return code
}

// exitAfterConnect listens on $PORT and returns code once a connection was
// accepted. The delay lets the readiness probe of the launcher complete.
func exitAfterConnect(code int) int {
	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", os.Getenv("PORT")))
	if err != nil {
		return fail(err)
	}
	conn, err := l.Accept()
	if err != nil {
		return fail(err)
	}
	_ = conn.Close()
	_ = l.Close()
	time.Sleep(300 * time.Millisecond)
	return code
}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errors.New("missing exit code")
	}
	return strconv.Atoi(args[0])
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, "test helper:", err)
	return helperFailure
}
