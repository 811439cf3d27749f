package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ardiland/ardilandcom/pkg/client"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type rootOptions struct {
	apiURL    string
	tokenPath string

	session *client.Session
}

func (o *rootOptions) init() error {
	tokenPath := o.tokenPath
	if tokenPath == "" {
		var err error
		if tokenPath, err = client.DefaultTokenPath(); err != nil {
			return err
		}
	}

	session, err := client.NewSession(client.NewClient(o.apiURL, nil), client.NewFileTokenStore(tokenPath))
	if err != nil {
		return err
	}
	o.session = session
	return nil
}

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			identity, err := opts.session.Login(cmd.Context(), username, password)
			if err != nil {
				if client.IsUnauthorized(err) {
					return errors.New("invalid credentials")
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", identity.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "admin username")
	return cmd
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.session.Logout(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "server logout failed, local token removed: %s\n", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the stored session is still valid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := opts.session.Check(cmd.Context())
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(cmd.OutOrStdout(), "authenticated against %s\n", opts.apiURL)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "not authenticated")
			}
			return nil
		},
	}
}

func newMessagesCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List contact messages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := opts.session.ListMessages(cmd.Context())
			if err != nil {
				return sessionError(err)
			}
			return printMessages(cmd.OutOrStdout(), list)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "read <id>",
		Short: "Mark a contact message as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.session.MarkMessageRead(cmd.Context(), args[0]); err != nil {
				return sessionError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "message %s marked as read\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.session.DeleteMessage(cmd.Context(), args[0]); err != nil {
				return sessionError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "message %s deleted\n", args[0])
			return nil
		},
	})

	return cmd
}

func printMessages(w io.Writer, list []*client.ContactMessage) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFROM\tRECEIVED\tREAD\tMESSAGE")
	for _, m := range list {
		fmt.Fprintf(
			tw, "%s\t%s <%s>\t%s\t%t\t%s\n",
			m.ID, m.Name, m.Email, m.CreatedAt.Format("2006-01-02 15:04"), m.Read, preview(m.Message, 50),
		)
	}
	return tw.Flush()
}

func preview(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

func sessionError(err error) error {
	if errors.Is(err, client.ErrNotAuthenticated) || client.IsUnauthorized(err) {
		return errors.New("not logged in, run: ardiland-admin login")
	}
	return err
}

func readPassword(out io.Writer) (string, error) {
	if password := os.Getenv("ARDILAND_ADMIN_PASSWORD"); password != "" {
		return password, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("ARDILAND_ADMIN_PASSWORD not set and stdin is not a terminal")
	}

	fmt.Fprint(out, "password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return string(password), nil
}
