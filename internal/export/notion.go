// Package export pushes analysis results into the tools the case-handling
// team tracks disputes in.
package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/pkg/notion"
)

// NotionExporter creates one page per finding in a Notion database, with
// severity and confidence as filterable properties and the evidence quotes
// in the page body properties.
type NotionExporter struct {
	client notion.Client
	dbID   notionapi.DatabaseID
}

// NewNotion creates an exporter writing to the given database.
func NewNotion(client notion.Client, databaseID string) *NotionExporter {
	return &NotionExporter{client: client, dbID: notionapi.DatabaseID(databaseID)}
}

// Export pushes every finding of the report and returns the number of pages
// created. It stops at the first API failure; pages already created stay.
func (e *NotionExporter) Export(ctx context.Context, report *model.AnalysisReport) (int, error) {
	for i, f := range report.Findings {
		if _, err := e.client.CreatePage(ctx, e.pageFor(report, f)); err != nil {
			return i, eris.Wrapf(err, "export: finding %s", f.Type)
		}
		zap.L().Debug("export: page created",
			zap.String("finding", f.Type),
			zap.String("document", report.DocumentID),
		)
	}
	return len(report.Findings), nil
}

func (e *NotionExporter) pageFor(report *model.AnalysisReport, f model.Finding) *notionapi.PageCreateRequest {
	created := notionapi.Date(report.CreatedAt)

	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(fmt.Sprintf("%s: %s", report.DocumentID, f.Type)),
		},
		"Category": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(f.Category)},
		},
		"Severity": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(f.Severity)},
		},
		"Confidence": notionapi.NumberProperty{
			Number: f.Confidence,
		},
		"Report": notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(report.ID),
		},
		"Detected": notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &created},
		},
	}
	if f.Explanation != "" {
		props["Explanation"] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(f.Explanation),
		}
	}
	if len(f.Evidence) > 0 {
		props["Evidence"] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(strings.Join(f.Evidence, "\n")),
		}
	}
	if f.CounterStrategy != "" {
		props["Strategy"] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(f.CounterStrategy),
		}
	}
	if f.LegalBasis != "" {
		props["Legal basis"] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(f.LegalBasis),
		}
	}

	return &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: e.dbID,
		},
		Properties: props,
	}
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
	}
}
