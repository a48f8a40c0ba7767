// Command analyze asks a running linker server whether two vendors look like
// the same operator and prints the evidence report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
	"github.com/Darksun1310/forensic-persona-linker/internal/infrastructure/linkerapi"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "linker server base URL")
	vendor1 := flag.String("vendor1", "", "first vendor name")
	vendor2 := flag.String("vendor2", "", "second vendor name")
	timeout := flag.Duration("timeout", time.Minute, "overall request timeout")
	debug := flag.Bool("debug", false, "log HTTP traffic")
	flag.Parse()

	if *vendor1 == "" || *vendor2 == "" {
		flag.Usage()
		os.Exit(2)
	}

	client := linkerapi.NewClient(*server, 2)
	client.SetDebug(*debug)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	comparison, err := client.CompareVendors(ctx, *vendor1, *vendor2)
	cancel()
	if errors.Is(err, domain.ErrVendorNotFound) {
		log.Fatalf("No listings stored for one of the vendors: %v", err)
	}
	if err != nil {
		log.Fatalf("Comparison failed: %v", err)
	}

	printComparison(os.Stdout, comparison)
}

func printComparison(w io.Writer, c *domain.VendorComparison) {
	fmt.Fprintf(w, "Verdict: %s (score %d/100)\n\n", c.Verdict, c.Score)
	for i, l := range c.Listings {
		fmt.Fprintf(w, "Listing %d: %s | %s | %s | %s\n  %s\n", i+1, l.Vendor, l.Category, l.Origin, l.Price, l.Description)
	}
	fmt.Fprintln(w)
	for _, entry := range c.Report {
		fmt.Fprintf(w, "%-17s %-28s %s\n  %s\n", entry.Feature, entry.Value, entry.Strength, entry.Reasoning)
	}
}
