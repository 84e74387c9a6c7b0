// cmd/vibing/manage.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vibing/vibing-client/internal/api"
	"github.com/vibing/vibing-client/internal/app"
	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/purchase"
	"github.com/vibing/vibing-client/internal/seller"
)

type listingFlags struct {
	title, description, category, tags string
	image, archive, demo, github       string
	version, docs                      string
	price                              float64
}

func (l *listingFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&l.title, "title", "", "product title")
	fs.StringVar(&l.description, "description", "", "product description")
	fs.Float64Var(&l.price, "price", 0, "price in USD")
	fs.StringVar(&l.category, "category", "", "category id")
	fs.StringVar(&l.tags, "tags", "", "comma separated tags")
	fs.StringVar(&l.image, "image", "", "cover image file")
	fs.StringVar(&l.archive, "archive", "", "product zip archive")
	fs.StringVar(&l.demo, "demo", "", "demo URL")
	fs.StringVar(&l.github, "github", "", "GitHub URL")
	fs.StringVar(&l.version, "version", "", "version")
	fs.StringVar(&l.docs, "docs", "", "documentation")
}

// apply copies the flags that were set onto the listing.
func (l *listingFlags) apply(fs *flag.FlagSet, dst *seller.Listing) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			dst.Form.Title = l.title
		case "description":
			dst.Form.Description = l.description
		case "price":
			dst.Form.Price = l.price
		case "category":
			dst.Form.Category = l.category
		case "tags":
			dst.Form.Tags = strings.Split(l.tags, ",")
		case "image":
			dst.ImagePath = l.image
		case "archive":
			dst.ArchivePath = l.archive
		case "demo":
			dst.Form.DemoURL = l.demo
		case "github":
			dst.Form.GithubURL = l.github
		case "version":
			dst.Form.Version = l.version
		case "docs":
			dst.Form.Documentation = l.docs
		}
	})
}

func runSeller(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	st := a.Session.State()
	if !st.IsAuthenticated() {
		return api.ErrAuthRequired
	}
	if !st.User.IsSeller() {
		return errors.New("seller tools need a seller account")
	}
	sub, rest := args[0], args[1:]

	fs := newFlags("seller " + sub)
	page := fs.Int("page", 1, "page number")
	status := fs.String("status", "", "product status filter")
	period := fs.String("period", "30d", "analytics period")
	var lf listingFlags
	lf.register(fs)
	pos, err := parseArgs(fs, rest)
	if err != nil {
		return err
	}

	switch sub {
	case "dashboard":
		d, err := a.Seller.Dashboard(ctx)
		if err != nil {
			return err
		}
		w := table(out)
		fmt.Fprintf(w, "Revenue\t%s\n", usd(d.Stats.TotalRevenue))
		fmt.Fprintf(w, "Sales\t%d\n", d.Stats.TotalSales)
		fmt.Fprintf(w, "Products\t%d\n", d.Stats.TotalProducts)
		fmt.Fprintf(w, "Rating\t%.1f\n\n", d.Stats.AvgRating)
		fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRICE\tSALES\tREVENUE\tVIEWS")
		for _, p := range d.Products {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%d\n", p.ID, truncate(p.Title, 32), p.Status, usd(p.Price), p.Sales, usd(p.Revenue), p.Views)
		}
		return w.Flush()
	case "products":
		list, err := a.Seller.Products(ctx, *page, *status)
		if err != nil {
			return err
		}
		w := table(out)
		fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRICE\tDOWNLOADS")
		for _, p := range list.Products {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID, truncate(p.Title, 40), p.Status, usd(p.Price), p.Downloads)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		pageFooter(out, list.Pagination)
	case "sales":
		list, err := a.Seller.Sales(ctx, *page)
		if err != nil {
			return err
		}
		printSales(a, out, list)
	case "analytics":
		data, err := a.Seller.Analytics(ctx, *period)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "create":
		var l seller.Listing
		lf.apply(fs, &l)
		p, err := a.Seller.Create(ctx, l)
		if p != nil {
			fmt.Fprintf(out, "created %s (%s)\n", p.ID, p.Title)
		}
		if errors.Is(err, seller.ErrArchiveUpload) {
			return fmt.Errorf("%w; retry with: vibing seller update %s -archive <zip>", err, p.ID)
		}
		return err
	case "update":
		if len(pos) != 1 {
			return errUsage
		}
		l, err := a.Seller.Edit(ctx, pos[0])
		if err != nil {
			return err
		}
		lf.apply(fs, l)
		p, err := a.Seller.Update(ctx, pos[0], *l)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "updated %s\n", p.ID)
	case "delete":
		if len(pos) != 1 {
			return errUsage
		}
		return a.Seller.Delete(ctx, pos[0])
	default:
		return errUsage
	}
	return nil
}

func printSales(a *app.App, out io.Writer, list *models.SaleList) {
	w := table(out)
	fmt.Fprintln(w, "ORDER\tDATE\tPRODUCT\tBUYER\tPRICE\tSTATUS")
	for _, s := range list.Sales {
		buyer := ""
		if b := s.Buyer(); b != nil {
			buyer = b.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", s.OrderID, day(s.CreatedAt), truncate(s.Product.Title, 28), buyer,
			usd(s.Price), purchase.StatusLabel(a.Translator, a.Lang(), s.Status))
	}
	w.Flush()
	pageFooter(out, list.Pagination)
}

func runAdmin(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	sub, rest := args[0], args[1:]

	fs := newFlags("admin " + sub)
	var params api.AdminListParams
	fs.IntVar(&params.Page, "page", 1, "page number")
	fs.StringVar(&params.Role, "role", "", "role filter")
	fs.StringVar(&params.Status, "status", "", "status filter")
	fs.StringVar(&params.Category, "category", "", "category filter")
	fs.StringVar(&params.Search, "search", "", "search text")
	refund := fs.Bool("refund", false, "refund the buyer when resolving")
	pos, err := parseArgs(fs, rest)
	if err != nil {
		return err
	}
	adm := a.Admin

	switch sub {
	case "stats":
		st, err := adm.Stats(ctx)
		if err != nil {
			return err
		}
		w := table(out)
		fmt.Fprintf(w, "Users\t%d\n", st.TotalUsers)
		fmt.Fprintf(w, "Products\t%d (%d pending)\n", st.TotalProducts, st.PendingProducts)
		fmt.Fprintf(w, "Sales\t%d\n", st.TotalSales)
		fmt.Fprintf(w, "Revenue\t%s\n", usd(st.TotalRevenue))
		return w.Flush()
	case "users":
		list, err := adm.Users(ctx, params)
		if err != nil {
			return err
		}
		w := table(out)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tJOINED")
		for _, u := range list.Users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, day(u.CreatedAt))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		pageFooter(out, list.Pagination)
	case "role":
		if len(pos) != 2 {
			return errUsage
		}
		return adm.UpdateUserRole(ctx, pos[0], models.UserRole(pos[1]))
	case "delete-user":
		if len(pos) != 1 {
			return errUsage
		}
		return adm.DeleteUser(ctx, pos[0])
	case "products":
		list, err := adm.Products(ctx, params)
		if err != nil {
			return err
		}
		w := table(out)
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tSTATUS\tPRICE")
		for _, p := range list.Products {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, truncate(p.Title, 36), p.Author, p.Status, usd(p.Price))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		pageFooter(out, list.Pagination)
	case "status":
		if len(pos) != 2 {
			return errUsage
		}
		return adm.UpdateProductStatus(ctx, pos[0], models.ProductStatus(pos[1]))
	case "delete-product":
		if len(pos) != 1 {
			return errUsage
		}
		return adm.DeleteProduct(ctx, pos[0])
	case "sales":
		list, err := adm.Sales(ctx, params.Page)
		if err != nil {
			return err
		}
		printSales(a, out, list)
	case "disputes":
		if err := adm.LoadDisputes(ctx, params.Page); err != nil {
			return err
		}
		st := adm.State()
		w := table(out)
		fmt.Fprintln(w, "PURCHASE\tPRODUCT\tBUYER\tPRICE\tSTATUS\tREASON")
		for _, d := range st.Disputes {
			mark := ""
			if d.ShouldPlatformIntervene {
				mark = " !"
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%s\t%s\n", d.ID, mark, truncate(d.Product.Title, 28), d.User.Name,
				usd(d.Price), purchase.StatusLabel(a.Translator, a.Lang(), d.Status), truncate(d.DisputeReason, 40))
		}
		return w.Flush()
	case "process":
		if len(pos) != 1 {
			return errUsage
		}
		return adm.ProcessDispute(ctx, pos[0])
	case "resolve":
		if len(pos) < 2 {
			return errUsage
		}
		return adm.ResolveDispute(ctx, pos[0], strings.Join(pos[1:], " "), *refund)
	default:
		return errUsage
	}
	return nil
}
