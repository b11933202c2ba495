package responder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleFAQs() []FAQ {
	return []FAQ{
		{
			ID:       "faq-1",
			Question: "How do I reset my password?",
			Answer:   "Click 'Forgot password' on the login page and follow the email instructions.",
			Category: "Account",
			Keywords: []string{"password", "reset"},
		},
		{
			ID:       "faq-2",
			Question: "What payment methods do you accept?",
			Answer:   "We accept all major credit cards and PayPal.",
			Category: "Billing",
			Keywords: []string{"payment methods", "credit card"},
		},
		{
			ID:       "faq-3",
			Question: "Do you ship internationally?",
			Answer:   "Yes, we ship to over 50 countries worldwide.",
			Category: "Shipping",
			Keywords: []string{"international"},
		},
	}
}

func userTurns(n int) []HistoryEntry {
	var h []HistoryEntry
	for i := 0; i < n; i++ {
		h = append(h,
			HistoryEntry{Role: "user", Content: "still not working"},
			HistoryEntry{Role: "assistant", Content: "let me check"},
		)
	}
	return h
}

func TestRespondFAQKeywordMatch(t *testing.T) {
	res := Respond("i forgot my password again", nil, sampleFAQs())

	require.Equal(t, sampleFAQs()[0].Answer, res.Content)
	require.Equal(t, "faq-1", res.Metadata.MatchedFAQID)
	require.Equal(t, 0.9, res.Metadata.Confidence)
	require.False(t, res.ShouldEscalate)
}

func TestRespondFAQQuestionContainsMessage(t *testing.T) {
	// 消息是 FAQ 问题文本的子串。
	res := Respond("Reset my Password", nil, sampleFAQs())
	require.Equal(t, "faq-1", res.Metadata.MatchedFAQID)
}

func TestRespondFAQQuestionPrefixMatch(t *testing.T) {
	// 消息包含问题文本的前 10 个字符 ("what payme")。
	res := Respond("so tell me, what payment options exist?", nil, sampleFAQs())
	require.Equal(t, "faq-2", res.Metadata.MatchedFAQID)
}

func TestRespondFAQCatalogOrderWins(t *testing.T) {
	faqs := sampleFAQs()
	// "password" 同时命中 faq-1 关键词；目录顺序决定取第一条。
	faqs[2].Keywords = append(faqs[2].Keywords, "password")
	res := Respond("password", nil, faqs)
	require.Equal(t, "faq-1", res.Metadata.MatchedFAQID)
}

// FAQ 匹配优先于升级关键词：带 "manager" 的消息若命中 FAQ，先回答 FAQ。
func TestRespondFAQPreemptsEscalationKeyword(t *testing.T) {
	res := Respond("I want to speak to a manager about my password", userTurns(5), sampleFAQs())

	require.False(t, res.ShouldEscalate)
	require.Equal(t, "faq-1", res.Metadata.MatchedFAQID)
}

func TestRespondFAQMatchIgnoresHistoryLength(t *testing.T) {
	res := Respond("how does international shipping work", userTurns(10), sampleFAQs())
	require.Equal(t, "faq-3", res.Metadata.MatchedFAQID)
	require.False(t, res.ShouldEscalate)
}

func TestRespondGreetingAtConversationStart(t *testing.T) {
	history := []HistoryEntry{{Role: "user", Content: "hello"}}
	res := Respond("hello", history, nil)

	require.Equal(t, greetingReply, res.Content)
	require.Equal(t, "greeting", res.Metadata.Type)
	require.False(t, res.ShouldEscalate)
}

func TestRespondGreetingOnlyEarlyInConversation(t *testing.T) {
	// 超过 2 条历史后，"hi" 不再触发问候，落入兜底分支。
	res := Respond("hi there", userTurns(2), nil)
	require.Equal(t, "contextual", res.Metadata.Type)
}

func TestRespondGratitude(t *testing.T) {
	for _, msg := range []string{"thanks!", "thank you so much", "ok thanks bye"} {
		res := Respond(msg, userTurns(2), nil)
		require.Equal(t, gratitudeReply, res.Content, "message %q", msg)
		require.Equal(t, "gratitude", res.Metadata.Type)
		require.False(t, res.ShouldEscalate)
	}
}

func TestRespondEscalationByKeyword(t *testing.T) {
	for _, msg := range []string{
		"I want to speak to human now",
		"let me talk to agent",
		"give me a real person",
		"I have a complaint",
	} {
		res := Respond(msg, nil, sampleFAQs())
		require.True(t, res.ShouldEscalate, "message %q", msg)
		require.Equal(t, ReasonHumanRequested, res.EscalationReason)
		require.True(t, res.Metadata.EscalationTriggered)
		require.Equal(t, escalationReply, res.Content)
	}
}

func TestRespondEscalationByVolume(t *testing.T) {
	history := []HistoryEntry{
		{Role: "user", Content: "my gadget is broken"},
		{Role: "assistant", Content: "could you describe the issue"},
		{Role: "user", Content: "it just does not work"},
		{Role: "assistant", Content: "have you tried restarting"},
		{Role: "user", Content: "yes, nothing changes"},
	}
	res := Respond("it is still broken", history, sampleFAQs())

	require.True(t, res.ShouldEscalate)
	require.Equal(t, ReasonUnresolved, res.EscalationReason)
}

// 关键词触发的原因优先于轮数触发的原因。
func TestRespondKeywordReasonWinsOverVolume(t *testing.T) {
	res := Respond("just get me a representative", userTurns(4), nil)
	require.True(t, res.ShouldEscalate)
	require.Equal(t, ReasonHumanRequested, res.EscalationReason)
}

// 只有 role=user 的历史计入升级阈值。
func TestRespondAssistantMessagesDoNotCountTowardThreshold(t *testing.T) {
	history := []HistoryEntry{
		{Role: "user", Content: "where is my stuff"},
		{Role: "assistant", Content: "checking"},
		{Role: "assistant", Content: "one moment"},
		{Role: "system", Content: "note"},
		{Role: "assistant", Content: "almost there"},
	}
	res := Respond("any news about my gadget", history, nil)
	require.False(t, res.ShouldEscalate)
	require.Equal(t, "contextual", res.Metadata.Type)
}

func TestRespondContextualBuckets(t *testing.T) {
	cases := []struct {
		message  string
		fragment string
	}{
		{"how much does it cost", "pricing"},
		{"I want my money back, refund please", "return policy"},
		{"when is the delivery coming", "shipping inquiries"},
		{"I cannot login to my account", "account-related"},
	}
	for _, tc := range cases {
		res := Respond(tc.message, userTurns(1), nil)
		require.Contains(t, res.Content, tc.fragment, "message %q", tc.message)
		require.Equal(t, "contextual", res.Metadata.Type)
		require.Equal(t, 0.6, res.Metadata.Confidence)
		require.False(t, res.ShouldEscalate)
	}
}

// refund/return 桶排在 shipping 桶之前，同时命中时以前者为准。
func TestRespondContextualBucketOrder(t *testing.T) {
	res := Respond("can I return the delivery", userTurns(1), nil)
	require.Contains(t, res.Content, "return policy")
}

func TestRespondGenericFallbackListsCategories(t *testing.T) {
	faqs := []FAQ{
		{ID: "a", Question: "Alpha question with enough length", Category: "Billing"},
		{ID: "b", Question: "Bravo question with enough length", Category: "Shipping"},
		{ID: "c", Question: "Charlie question with enough length", Category: "Billing"},
	}
	res := Respond("qwertyuiop zxcvbnm", userTurns(1), faqs)

	require.Contains(t, res.Content, "Billing, Shipping")
	require.NotContains(t, res.Content, "Billing, Shipping, Billing")
	require.Equal(t, "contextual", res.Metadata.Type)
}

// 相同输入两次调用必须得到完全一致的结果。
func TestRespondDeterministic(t *testing.T) {
	history := userTurns(2)
	faqs := sampleFAQs()

	first := Respond("where is my order", history, faqs)
	second := Respond("where is my order", history, faqs)
	require.Equal(t, first, second)
}
