package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/openai"
	"github.com/you-education/examref/internal/telemetry"
	"github.com/you-education/examref/internal/youtube"
)

const mindmapGeneratorPrompt = `You are an expert educational content organizer. Your task is to create a hierarchical mindmap based on the provided educational content chunks.

The mindmap should have the following structure:
1. A main topic derived from the overall content
2. Subtopics that represent key concepts or areas
3. Further subdivisions as needed to create a comprehensive learning path

IMPORTANT: For the smallest subdivisions (leaf nodes), mark them with "is_last_subtopic": true. These leaf nodes will be used to search YouTube for relevant educational videos.

Format your response as a JSON object following this structure:
{
    "title": "Main Topic",
    "is_last_subtopic": false,
    "subtopics": [
        {
        "title": "Subtopic 1",
        "is_last_subtopic": false,
        "subtopics": [
            {
                "title": "Specific Concept 1",
                "is_last_subtopic": true
            }
        ]
        }
    ]
}

Make sure titles are concise, clear, and would work well as YouTube search terms.`

const mindmapRefinerPrompt = `You are an expert educational content curator. You have been provided with:
1. An initial mindmap structure
2. YouTube video results for each leaf node in the mindmap
3. Notes of the user

Your task is to refine the mindmap and integrate the most relevant YouTube resources for each leaf node. Also add short notes for each leaf node.

For each leaf node (where "is_last_subtopic" is true), select up to 3 of the most relevant YouTube videos and integrate them into the final mindmap.

Return your response as a JSON object following this structure:
{
    "title": "Main Topic",
    "is_last_subtopic": false,
    "subtopics": [
        {
        "title": "Subtopic 1",
        "is_last_subtopic": false,
        "subtopics": [
            {
            "title": "Specific Concept 1",
            "is_last_subtopic": true,
            "resources": [
                {
                    "type": "youtube",
                    "data": {
                        "url": "https://youtu.be/video-id",
                        "title": "Video Title",
                        "description": "Brief description of the video"
                    }
                },
                {
                    "type": "notes",
                    "data": "...multiline notes..."
                }
            ]
            }
        ]
        }
    ]
}

Ensure the integrated resources are highly relevant to the specific leaf node topics.`

// MindmapCache stores generated mindmaps per exam
type MindmapCache interface {
	Get(ctx context.Context, examID string) (string, error)
	Save(ctx context.Context, examID, mindmap string) error
	Delete(ctx context.Context, examID string) error
}

// JSONCompleter produces JSON-constrained completions
type JSONCompleter interface {
	CompleteJSON(ctx context.Context, messages []openai.ChatMessage) (string, error)
}

// VideoSearcher finds videos for leaf node topics
type VideoSearcher interface {
	Search(ctx context.Context, query string, maxResults int64) ([]youtube.VideoMetadata, error)
}

// MindmapNode is the parsed shape of a generated mindmap tree.
type MindmapNode struct {
	Title          string        `json:"title"`
	IsLastSubtopic bool          `json:"is_last_subtopic"`
	Subtopics      []MindmapNode `json:"subtopics,omitempty"`
}

// MindmapService generates study mindmaps from the full chunk content of an
// exam's references, enriched with video suggestions per leaf topic.
type MindmapService struct {
	exams         ExamGetter
	referenceRepo ReferenceRepositoryInterface
	chunkRepo     ChunkRepositoryInterface
	content       ContentStoreInterface
	cache         MindmapCache
	completer     JSONCompleter
	videos        VideoSearcher
}

func NewMindmapService(
	exams ExamGetter,
	referenceRepo ReferenceRepositoryInterface,
	chunkRepo ChunkRepositoryInterface,
	content ContentStoreInterface,
	cache MindmapCache,
	completer JSONCompleter,
	videos VideoSearcher,
) *MindmapService {
	return &MindmapService{
		exams:         exams,
		referenceRepo: referenceRepo,
		chunkRepo:     chunkRepo,
		content:       content,
		cache:         cache,
		completer:     completer,
		videos:        videos,
	}
}

// ListAllChunks returns every chunk's content for a reference in
// chunk_number order, the "retrieve everything" mode the mindmap path uses
// instead of similarity ranking.
func (s *MindmapService) ListAllChunks(ctx context.Context, referenceID string) ([]string, error) {
	chunks, err := s.chunkRepo.ListByReference(ctx, referenceID)
	if err != nil {
		return nil, err
	}

	contents := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		doc, err := s.content.Get(ctx, chunk.ID)
		if err != nil {
			if errors.Is(err, domain.ErrChunkContentNotFound) {
				log.Printf("list chunks: no content document for chunk %s, skipping", chunk.ID)
				continue
			}
			return nil, err
		}
		contents = append(contents, doc.Content)
	}
	return contents, nil
}

// Generate returns the exam's mindmap as raw JSON. Without refresh a cached
// mindmap is returned as-is; with refresh (or on a cache miss) a new one is
// generated from all chunk content and cached.
func (s *MindmapService) Generate(ctx context.Context, examID string, refresh bool) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "MindmapService.Generate", telemetry.SpanAttributes{
		ExamID:    examID,
		Operation: "mindmap",
	})
	defer span.End()

	if _, err := s.exams.GetByID(ctx, examID); err != nil {
		return "", err
	}

	if !refresh {
		cached, err := s.cache.Get(ctx, examID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrMindmapNotFound) {
			return "", err
		}
	}

	references, err := s.referenceRepo.ListByExam(ctx, examID)
	if err != nil {
		return "", err
	}
	if len(references) == 0 {
		return "", domain.NewDomainError(domain.ErrCodeNotFound, "no references found for exam")
	}

	var allContent []string
	for _, ref := range references {
		contents, err := s.ListAllChunks(ctx, ref.ID)
		if err != nil {
			return "", err
		}
		allContent = append(allContent, contents...)
	}
	if len(allContent) == 0 {
		return "", domain.NewDomainError(domain.ErrCodeNotFound, "no chunk content found for exam")
	}

	notes := strings.Join(allContent, "\n\n")

	initial, err := s.completer.CompleteJSON(ctx, []openai.ChatMessage{
		{Role: openai.RoleSystem, Content: mindmapGeneratorPrompt},
		{Role: openai.RoleUser, Content: "Generate a mindmap for the following content:\n\n" + notes},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate mindmap: %w", err)
	}

	final := initial
	if s.videos != nil {
		refined, err := s.refineWithVideos(ctx, initial, notes)
		if err != nil {
			log.Printf("mindmap: refinement failed, keeping initial mindmap: %v", err)
		} else {
			final = refined
		}
	}

	if err := s.cache.Save(ctx, examID, final); err != nil {
		log.Printf("mindmap: failed to cache mindmap for exam %s: %v", examID, err)
	}

	return final, nil
}

// refineWithVideos searches videos for every leaf topic and asks the model
// to fold the best matches into the tree.
func (s *MindmapService) refineWithVideos(ctx context.Context, initial, notes string) (string, error) {
	var root MindmapNode
	if err := json.Unmarshal([]byte(initial), &root); err != nil {
		return "", fmt.Errorf("failed to parse initial mindmap: %w", err)
	}

	videoResults := make(map[string][]youtube.VideoMetadata)
	for _, leaf := range collectLeafPaths(root, nil) {
		videos, err := s.videos.Search(ctx, leaf.title, 3)
		if err != nil {
			log.Printf("mindmap: video search failed for %q: %v", leaf.title, err)
			continue
		}
		videoResults[strings.Join(leaf.path, " > ")] = videos
	}

	videosJSON, err := json.Marshal(videoResults)
	if err != nil {
		return "", err
	}

	return s.completer.CompleteJSON(ctx, []openai.ChatMessage{
		{Role: openai.RoleSystem, Content: mindmapRefinerPrompt},
		{Role: openai.RoleUser, Content: fmt.Sprintf(
			"Initial mindmap:\n%s\n\nVideo results:\n%s\n\nNotes:\n%s",
			initial, string(videosJSON), notes,
		)},
	})
}

type leafPath struct {
	title string
	path  []string
}

func collectLeafPaths(node MindmapNode, prefix []string) []leafPath {
	path := append(append([]string{}, prefix...), node.Title)
	if node.IsLastSubtopic {
		return []leafPath{{title: node.Title, path: path}}
	}
	var leaves []leafPath
	for _, sub := range node.Subtopics {
		leaves = append(leaves, collectLeafPaths(sub, path)...)
	}
	return leaves
}
