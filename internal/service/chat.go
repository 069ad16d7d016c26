package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/openai"
	"github.com/you-education/examref/internal/telemetry"
)

const chatSystemPrompt = `You are a helpful study assistant.
The user has an upcoming exam for %s of subject %s and wants to prepare for it.
You are given access to excerpts of the user's notes and references related to the exam. Use that information to answer their questions.
If you don't know the answer based on this information, say so.

Context:
%s

Please provide a detailed, accurate response based on the provided context. Include specific facts and examples from the reference materials where relevant.`

// SubjectGetter looks up subjects for prompt construction
type SubjectGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Subject, error)
}

// ChunkRetriever serves ranked chunk content for a query
type ChunkRetriever interface {
	Retrieve(ctx context.Context, queryText string, allowedReferenceIDs []string, k int, maxDistance float64) ([]RetrievedChunk, error)
}

// ChatCompleter streams assistant replies
type ChatCompleter interface {
	StreamCompletion(ctx context.Context, messages []openai.ChatMessage, fn func(delta string) error) error
}

// ChatMessage is one prior turn supplied by the caller.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatInput is one chat request against an exam's references.
type ChatInput struct {
	ExamID           string
	Message          string
	ReferenceIDs     []string
	PreviousMessages []ChatMessage
}

// ChatService answers questions grounded in retrieved reference excerpts.
type ChatService struct {
	exams         ExamGetter
	subjects      SubjectGetter
	referenceRepo ReferenceRepositoryInterface
	retriever     ChunkRetriever
	completer     ChatCompleter
	k             int
	maxDistance   float64
}

func NewChatService(
	exams ExamGetter,
	subjects SubjectGetter,
	referenceRepo ReferenceRepositoryInterface,
	retriever ChunkRetriever,
	completer ChatCompleter,
	k int,
	maxDistance float64,
) *ChatService {
	return &ChatService{
		exams:         exams,
		subjects:      subjects,
		referenceRepo: referenceRepo,
		retriever:     retriever,
		completer:     completer,
		k:             k,
		maxDistance:   maxDistance,
	}
}

// Stream validates the request, retrieves context and streams the reply
// through fn one delta at a time. A failing retrieval degrades to an
// answer without reference context instead of failing the chat.
func (s *ChatService) Stream(ctx context.Context, input ChatInput, fn func(delta string) error) error {
	ctx, span := telemetry.StartSpan(ctx, "ChatService.Stream", telemetry.SpanAttributes{
		ExamID:    input.ExamID,
		Operation: "chat",
	})
	defer span.End()

	exam, err := s.exams.GetByID(ctx, input.ExamID)
	if err != nil {
		return err
	}
	subject, err := s.subjects.GetByID(ctx, exam.SubjectID)
	if err != nil {
		return err
	}

	refs, err := s.referenceRepo.ListByExamAndIDs(ctx, input.ExamID, input.ReferenceIDs)
	if err != nil {
		return err
	}
	if len(refs) != len(input.ReferenceIDs) {
		return domain.ErrReferenceNotFound
	}

	chunks, err := s.retriever.Retrieve(ctx, input.Message, input.ReferenceIDs, s.k, s.maxDistance)
	if err != nil {
		log.Printf("chat: retrieval failed, answering without context: %v", err)
		chunks = nil
	}

	var contextText strings.Builder
	for _, chunk := range chunks {
		contextText.WriteString("Reference Content:\n")
		contextText.WriteString(chunk.Content)
		contextText.WriteString("\n\n\n")
	}

	messages := make([]openai.ChatMessage, 0, len(input.PreviousMessages)+2)
	messages = append(messages, openai.ChatMessage{
		Role:    openai.RoleSystem,
		Content: fmt.Sprintf(chatSystemPrompt, exam.Name, subject.Name, contextText.String()),
	})
	for _, m := range input.PreviousMessages {
		messages = append(messages, openai.ChatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatMessage{Role: openai.RoleUser, Content: input.Message})

	return s.completer.StreamCompletion(ctx, messages, fn)
}
