package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Astinix/Butter-Launcher/pkg/auth"
	"github.com/Astinix/Butter-Launcher/pkg/auth/types"
)

func newLoginCmd() *cobra.Command {
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log a premium account in via the provider's device flow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := newClient(cmd)
			err := client.Login(cmd.Context(), !noBrowser, func(userCode, verificationURL string) {
				pterm.Info.Printfln("Confirm code %s at %s", userCode, verificationURL)
			})
			if err != nil {
				return err
			}
			pterm.Success.Println("Logged in")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open the verification URL automatically")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the premium credential bundle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			newClient(cmd).Logout()
			pterm.Success.Println("Logged out")
			return nil
		},
	}
}

func newProfileCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the primary premium profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := newClient(cmd).ResolvePrimaryProfile(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("%s (%s)", profile.Username, profile.UUID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Re-resolve from the provider instead of the cache")
	return cmd
}

func newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Negotiate game-session tokens for the primary profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			launch, err := newClient(cmd).FetchLaunchAuth(cmd.Context())
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Session ready for %s (%s)", launch.Username, launch.UUID)
			pterm.Info.Printfln("identityToken: %s", maskToken(launch.IdentityToken))
			pterm.Info.Printfln("sessionToken:  %s", maskToken(launch.SessionToken))
			return nil
		},
	}
}

func newOfflineTokenCmd() *cobra.Command {
	var (
		premium  bool
		username string
		id       string
		issuer   string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "offline-token",
		Short: "Issue or read an offline token for a player",
		RunE: func(cmd *cobra.Command, _ []string) error {
			accountType := types.AccountNoPremium
			if premium {
				accountType = types.AccountPremium
			}
			token, err := newClient(cmd).EnsureOfflineToken(cmd.Context(), auth.OfflineTokenRequest{
				AccountType:  accountType,
				Username:     username,
				UUID:         id,
				Issuer:       issuer,
				ForceRefresh: force,
			})
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().BoolVar(&premium, "premium", false, "Issue via the premium account instead of the fallback provider")
	cmd.Flags().StringVar(&username, "username", "", "Player username (community accounts)")
	cmd.Flags().StringVar(&id, "uuid", "", "Player uuid")
	cmd.Flags().StringVar(&issuer, "issuer", "", "Issuer base URL to return the token for")
	cmd.Flags().BoolVar(&force, "force", false, "Skip the store and re-issue")
	_ = cmd.MarkFlagRequired("uuid")
	return cmd
}

func newJwksCmd() *cobra.Command {
	var (
		official bool
		refresh  bool
	)

	cmd := &cobra.Command{
		Use:   "jwks",
		Short: "Show an issuer's cached signing-key set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := newClient(cmd)
			cache := client.CommunityJwks()
			if official {
				cache = client.OfficialJwks()
			}
			jwks, err := cache.Ensure(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("%d signing key(s)", len(jwks.Keys))
			return nil
		},
	}

	cmd.Flags().BoolVar(&official, "official", false, "Use the first-party issuer instead of the community issuer")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch from the issuer even when cached")
	return cmd
}

// maskToken keeps just enough of a token to correlate logs.
func maskToken(token string) string {
	if len(token) <= 12 {
		return "<short token>"
	}
	return token[:8] + "…" + token[len(token)-4:]
}
