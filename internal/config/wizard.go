package config

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to dirpage! Let's configure your directory site.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Brand.
	brandPrompt := promptui.Prompt{
		Label:   "Brand name",
		Default: cfg.Site.Brand,
	}
	brand, err := brandPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("brand: %w", err)
	}
	cfg.Site.Brand = brand
	cfg.Site.HomepageTitle = brand + " - Local Business Directory"
	cfg.Resolver.ReservedHosts = ReservedHostsFor(brand)

	// 2. Resolution strategy.
	strategyPrompt := promptui.Select{
		Label: "How is the directory picked from the URL?",
		Items: []string{
			"path: example.com/plumbing",
			"host: plumbing.example.com",
		},
	}
	idx, _, err := strategyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("strategy selection: %w", err)
	}
	strategies := []Strategy{StrategyPath, StrategyHost}
	cfg.Resolver.Strategy = strategies[idx]

	if cfg.Resolver.Strategy == StrategyHost {
		reservedPrompt := promptui.Prompt{
			Label:   "Main-site host labels (comma-separated globs)",
			Default: strings.Join(cfg.Resolver.ReservedHosts, ","),
		}
		reserved, err := reservedPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("reserved hosts: %w", err)
		}
		cfg.Resolver.ReservedHosts = splitAndTrim(reserved)
	}

	// 3. Root policy.
	rootPrompt := promptui.Select{
		Label: "What should the main site show?",
		Items: []string{
			"homepage: a local landing page",
			"redirect: send visitors to another URL",
		},
	}
	idx, _, err = rootPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("root policy selection: %w", err)
	}
	policies := []RootPolicy{RootHomepage, RootRedirect}
	cfg.Site.RootPolicy = policies[idx]

	if cfg.Site.RootPolicy == RootRedirect {
		redirectPrompt := promptui.Prompt{
			Label:   "Redirect URL",
			Default: cfg.Site.RedirectURL,
		}
		redirectURL, err := redirectPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("redirect url: %w", err)
		}
		cfg.Site.RedirectURL = redirectURL
	}

	// 4. Directory API.
	apiPrompt := promptui.Prompt{
		Label:   "Directory API base URL (blank for the built-in API)",
		Default: cfg.Loader.APIBase,
	}
	apiBase, err := apiPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("api base: %w", err)
	}
	cfg.Loader.APIBase = apiBase

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
