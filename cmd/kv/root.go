package kv

import (
	"github.com/spf13/cobra"
)

// Commands returns the dictionary commands added below the root command.
// Every command opens the configured store for the duration of one
// invocation and closes it before exiting.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		setCmd,
		addCmd,
		getCmd,
		delCmd,
		hasCmd,
		countCmd,
		scanCmd,
		infoCmd,
		perfTestCmd,
	}
}

// withStore opens the store, runs fn and closes the store again.
func withStore(fn func(st *store) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()
	return fn(st)
}
