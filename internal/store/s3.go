package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// s3API is the subset of *s3.Client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Object metadata keys. S3 returns user metadata keys lower-cased.
const (
	metaRows     = "rows"
	metaComplete = "is-complete"
	metaLoadedAt = "loaded-at"
)

// S3Store implements Store by writing each appended table as one CSV
// object, keyed as
//
//	<prefix>/<schema>/<table>/_location=<loc>/_term=<term>/<uuid>.csv
//
// Find counts objects under the location/term prefix.
type S3Store struct {
	client s3API
	bucket string
	prefix string
	newID  func() string
}

// NewS3 creates an S3Store using the default AWS credential chain.
func NewS3(ctx context.Context, bucket, prefix, region string) (*S3Store, error) {
	if bucket == "" {
		return nil, eris.New("s3: bucket is required")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "s3: load aws config")
	}
	return newS3Store(s3.NewFromConfig(awsCfg), bucket, prefix), nil
}

func newS3Store(client s3API, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		newID:  func() string { return uuid.New().String() },
	}
}

func (s *S3Store) tablePrefix(dest Destination) string {
	return path.Join(s.prefix, dest.Schema, dest.Table) + "/"
}

func (s *S3Store) pairPrefix(dest Destination, location, term string) string {
	return s.tablePrefix(dest) + "_location=" + url.PathEscape(location) + "/_term=" + url.PathEscape(term) + "/"
}

// parsePairKey recovers location and term from an object key.
func parsePairKey(tablePrefix, key string) (string, string, bool) {
	rest, ok := strings.CutPrefix(key, tablePrefix)
	if !ok {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return "", "", false
	}
	locEnc, ok1 := strings.CutPrefix(parts[0], "_location=")
	termEnc, ok2 := strings.CutPrefix(parts[1], "_term=")
	if !ok1 || !ok2 {
		return "", "", false
	}
	loc, err1 := url.PathUnescape(locEnc)
	term, err2 := url.PathUnescape(termEnc)
	if err1 != nil || err2 != nil {
		return "", "", false
	}
	return loc, term, true
}

func (s *S3Store) Migrate(_ context.Context, _ Destination) error {
	return nil
}

func (s *S3Store) Close() error {
	return nil
}

func (s *S3Store) Find(ctx context.Context, dest Destination, location, term string) (int64, error) {
	keys, err := s.list(ctx, s.pairPrefix(dest, location, term))
	if err != nil {
		return 0, eris.Wrapf(err, "s3: find %q/%q", location, term)
	}
	return int64(len(keys)), nil
}

func (s *S3Store) Append(ctx context.Context, dest Destination, t *Table) (int64, error) {
	if t.Len() == 0 {
		return 0, nil
	}
	location, ok1 := t.Value(0, ColLocation).(string)
	term, ok2 := t.Value(0, ColTerm).(string)
	if !ok1 || !ok2 {
		return 0, eris.New("s3: table has no _location/_term metadata")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return 0, eris.Wrap(err, "s3: write csv header")
	}
	for i := range t.Rows {
		if err := w.Write(t.Strings(i)); err != nil {
			return 0, eris.Wrapf(err, "s3: write csv row %d", i)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, eris.Wrap(err, "s3: flush csv")
	}

	complete, _ := t.Value(0, ColIsComplete).(string)
	loadedAt, _ := t.Value(0, ColLoadedAt).(string)
	key := s.pairPrefix(dest, location, term) + s.newID() + ".csv"

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
		Metadata: map[string]string{
			metaRows:     strconv.Itoa(t.Len()),
			metaComplete: complete,
			metaLoadedAt: loadedAt,
		},
	})
	if err != nil {
		return 0, eris.Wrapf(err, "s3: put %s", key)
	}
	return int64(t.Len()), nil
}

func (s *S3Store) Summary(ctx context.Context, dest Destination) ([]LoadSummary, error) {
	prefix := s.tablePrefix(dest)
	keys, err := s.list(ctx, prefix)
	if err != nil {
		return nil, eris.Wrap(err, "s3: summarize")
	}

	type pair struct{ location, term string }
	byPair := make(map[pair]*LoadSummary)
	for _, key := range keys {
		loc, term, ok := parsePairKey(prefix, key)
		if !ok {
			continue
		}
		head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, eris.Wrapf(err, "s3: head %s", key)
		}

		p := pair{loc, term}
		ls, seen := byPair[p]
		if !seen {
			ls = &LoadSummary{Location: loc, Term: term, Complete: true}
			byPair[p] = ls
		}
		rows, _ := strconv.ParseInt(head.Metadata[metaRows], 10, 64)
		ls.Rows += rows
		ls.Complete = ls.Complete && head.Metadata[metaComplete] == "True"
		if at := head.Metadata[metaLoadedAt]; at > ls.LastLoaded {
			ls.LastLoaded = at
		}
	}

	out := make([]LoadSummary, 0, len(byPair))
	for _, ls := range byPair {
		out = append(out, *ls)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Location != out[j].Location {
			return out[i].Location < out[j].Location
		}
		return out[i].Term < out[j].Term
	})
	return out, nil
}

func (s *S3Store) list(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}
