package hub

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"golang.org/x/sync/errgroup"
)

// Fetch downloads every selected file of id into dir. Files are written to
// a temporary name and renamed once complete, so dir never holds a truncated
// file under its final name.
func (c *Client) Fetch(ctx context.Context, id, dir string) error {
	start := time.Now()
	info, err := c.ModelInfo(ctx, id)
	if err != nil {
		return err
	}
	files, err := c.selectFiles(info.Siblings)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("hub: %s has no matching files", id)
	}
	c.log.Info().Str("model", id).Str("revision", c.revision).Int("files", len(files)).Msg("hub fetch")

	var p *mpb.Progress
	if c.progress != nil {
		p = mpb.NewWithContext(ctx, mpb.WithOutput(c.progress), mpb.WithWidth(60), mpb.WithRefreshRate(180*time.Millisecond))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)
	for _, f := range files {
		g.Go(func() error { return c.download(gctx, id, f, dir, p) })
	}
	err = g.Wait()
	if p != nil {
		p.Wait()
	}
	if err != nil {
		return err
	}
	c.log.Info().Str("model", id).Dur("dur", time.Since(start)).Msg("hub fetch done")
	return nil
}

func (c *Client) download(ctx context.Context, id string, f Sibling, dir string, p *mpb.Progress) error {
	u := fmt.Sprintf("%s/%s/resolve/%s/%s", c.endpoint, escapePath(id), url.PathEscape(c.revision), escapePath(f.Name))
	req, err := c.newRequest(ctx, u)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hub: get %s: %w", f.Name, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, id+"/"+f.Name); err != nil {
		return err
	}

	target := filepath.Join(dir, filepath.FromSlash(f.Name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".part-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	size := resp.ContentLength
	if size <= 0 {
		size = f.Size
	}
	var body io.Reader = resp.Body
	var bar *mpb.Bar
	if p != nil {
		bar = p.AddBar(size,
			mpb.PrependDecorators(
				decor.Name(f.Name, decor.WC{W: 40, C: decor.DidentRight}),
				decor.CountersKibiByte("% .2f / % .2f"),
			),
			mpb.AppendDecorators(
				decor.EwmaETA(decor.ET_STYLE_GO, 90),
				decor.Name(" ] "),
				decor.EwmaSpeed(decor.UnitKiB, "% .2f", 60),
			),
		)
		body = bar.ProxyReader(resp.Body)
	}

	n, err := io.Copy(tmp, body)
	if err == nil {
		err = tmp.Close()
	}
	if err != nil {
		if bar != nil {
			bar.Abort(false)
		}
		return fmt.Errorf("hub: write %s: %w", f.Name, err)
	}
	if bar != nil {
		bar.SetTotal(-1, true)
	}
	tmp = nil
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	bytesTotal.Add(float64(n))
	return nil
}
