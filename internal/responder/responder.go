// Package responder 实现了客服回复的规则引擎。
// 引擎是纯函数：不做 I/O，不持有状态，相同输入永远产生相同输出。
package responder

import "strings"

// HistoryEntry 是传给引擎的一条历史消息（含刚追加的用户消息）。
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FAQ 是引擎视角下的一条常见问题。匹配按目录顺序进行，命中第一条即返回。
type FAQ struct {
	ID       string
	Question string
	Answer   string
	Category string
	Keywords []string
}

// Metadata 描述一条回复的结构化元信息。每个分支只填自己固定的字段，
// 序列化时通过 omitempty 保证各分支的 JSON 形状互不混杂。
type Metadata struct {
	Type                string  `json:"type,omitempty"`
	MatchedFAQID        string  `json:"matched_faq_id,omitempty"`
	Confidence          float64 `json:"confidence,omitempty"`
	EscalationTriggered bool    `json:"escalation_triggered,omitempty"`
}

// Result 是引擎对一条用户消息的完整判定。
type Result struct {
	Content          string
	Metadata         Metadata
	ShouldEscalate   bool
	EscalationReason string
}

// 各分支的固定回复文案。
const (
	greetingReply = "Hello! I am your AI customer support assistant. How can I help you today? You can ask me about our products, services, policies, or any other questions you might have."

	gratitudeReply = "You're welcome! Is there anything else I can help you with?"

	escalationReply = "I understand you need additional assistance. I'm escalating your query to a human agent who will be with you shortly. A support representative will reach out to you via email within 24 hours. Is there anything else I can help with in the meantime?"

	// 升级原因固定为以下两种之一，关键词触发优先于轮数触发。
	ReasonHumanRequested = "User requested human agent"
	ReasonUnresolved     = "Unable to resolve query after multiple attempts"
)

var greetingTokens = []string{"hi", "hello", "hey", "greetings"}

var escalationKeywords = []string{
	"speak to human", "talk to agent", "real person",
	"representative", "manager", "complaint",
}

// 达到该数量的用户消息后仍未命中任何规则，视为多次未解决，触发升级。
const unansweredThreshold = 3

// Respond 按严格的优先级对用户消息做判定，命中即返回，不再落入后续规则：
// 1) FAQ 匹配  2) 问候  3) 致谢  4) 升级触发  5) 按主题兜底。
// 注意 FAQ 匹配永远优先，即使消息中含有升级关键词也先回答 FAQ。
func Respond(message string, history []HistoryEntry, faqs []FAQ) Result {
	lower := strings.ToLower(message)

	// 1. FAQ 匹配：问题文本包含整条消息；或消息包含问题前 10 个字符；
	// 或任一关键词是消息的子串。大小写不敏感。
	for _, faq := range faqs {
		if matchFAQ(lower, faq) {
			return Result{
				Content:  faq.Answer,
				Metadata: Metadata{MatchedFAQID: faq.ID, Confidence: 0.9},
			}
		}
	}

	// 2. 问候：仅限对话开头（历史不超过 2 条），之后出现 "hi" 等词继续走后面的规则。
	if len(history) <= 2 && containsAny(lower, greetingTokens) {
		return Result{
			Content:  greetingReply,
			Metadata: Metadata{Type: "greeting"},
		}
	}

	// 3. 致谢："thank" 同时覆盖 thanks / thank you。
	if strings.Contains(lower, "thank") {
		return Result{
			Content:  gratitudeReply,
			Metadata: Metadata{Type: "gratitude"},
		}
	}

	// 4. 升级触发：两个条件相互独立，任一成立即升级。
	byKeyword := containsAny(lower, escalationKeywords)
	byCount := countUserTurns(history) >= unansweredThreshold
	if byKeyword || byCount {
		reason := ReasonUnresolved
		if byKeyword {
			reason = ReasonHumanRequested
		}
		return Result{
			Content:          escalationReply,
			Metadata:         Metadata{EscalationTriggered: true},
			ShouldEscalate:   true,
			EscalationReason: reason,
		}
	}

	// 5. 按主题的兜底回复。
	return Result{
		Content:  contextualReply(lower, faqs),
		Metadata: Metadata{Type: "contextual", Confidence: 0.6},
	}
}

func matchFAQ(lowerMessage string, faq FAQ) bool {
	lowerQuestion := strings.ToLower(faq.Question)
	if strings.Contains(lowerQuestion, lowerMessage) ||
		strings.Contains(lowerMessage, questionPrefix(lowerQuestion)) {
		return true
	}
	for _, kw := range faq.Keywords {
		if strings.Contains(lowerMessage, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// questionPrefix 取问题的前 10 个字符（按 rune 截取，避免截断多字节字符）。
func questionPrefix(lowerQuestion string) string {
	runes := []rune(lowerQuestion)
	if len(runes) <= 10 {
		return lowerQuestion
	}
	return string(runes[:10])
}

func containsAny(lower string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// countUserTurns 只统计 role=user 的历史条目，assistant/system 不计入升级阈值。
func countUserTurns(history []HistoryEntry) int {
	n := 0
	for _, h := range history {
		if h.Role == "user" {
			n++
		}
	}
	return n
}

// contextualReply 按固定顺序检查主题关键词，全部未命中时列出 FAQ 目录中
// 出现过的类别，请用户换种问法。
func contextualReply(lower string, faqs []FAQ) string {
	switch {
	case strings.Contains(lower, "price") || strings.Contains(lower, "cost") || strings.Contains(lower, "pay"):
		return "I'd be happy to help with pricing information. Could you please specify which product or service you're interested in? You can also visit our pricing page for detailed information."
	case strings.Contains(lower, "refund") || strings.Contains(lower, "return"):
		return "I can assist with refund and return inquiries. Our return policy allows returns within 30 days of purchase. Could you provide your order number so I can look into this further?"
	case strings.Contains(lower, "shipping") || strings.Contains(lower, "delivery"):
		return "For shipping inquiries, standard delivery typically takes 5-7 business days. Express shipping is available for 2-3 business days. Would you like to know about a specific order's shipping status?"
	case strings.Contains(lower, "account") || strings.Contains(lower, "login"):
		return "I can help with account-related issues. Are you having trouble logging in, or do you need to update your account information? Please provide more details."
	}

	// 去重但保持目录顺序。
	seen := make(map[string]struct{})
	var categories []string
	for _, f := range faqs {
		if _, ok := seen[f.Category]; ok {
			continue
		}
		seen[f.Category] = struct{}{}
		categories = append(categories, f.Category)
	}
	return "I'm not sure I fully understand your question. I can help you with topics like: " +
		strings.Join(categories, ", ") +
		". Could you please rephrase your question or ask about one of these topics?"
}
