package analysis

import "fmt"

const systemPrompt = "You analyse public Reddit activity. You only state what the supplied activity supports, and you cite it."

// Messages returned instead of a generation when there is nothing to analyse.
const (
	NoActivitySummary = "No sufficient user activity found to generate an executive summary."
	NoActivityPersona = "No sufficient user activity found to generate a comprehensive persona."
)

// Notices placed in a section whose generation failed.
const (
	SummaryErrorNotice = "An error occurred while generating the executive summary. Please try again or check the API key."
	PersonaErrorNotice = "An error occurred while generating the comprehensive persona. Please try again or check the API key."
)

const summaryTemplate = `Based on the provided Reddit user activity, create a concise EXECUTIVE SUMMARY with the following sections.
Each claim MUST be supported by a citation using the format [source].

**CRITICAL FINDINGS**
- [Most important risk/strength inferred from the user's activity] [source]
- [Another significant finding, positive or negative] [source]

**KEY RISK FACTORS**
- [Top risk 1 from their online behavior/content] [source]
- [Top risk 2, if applicable] [source]

**BEHAVIORAL OVERVIEW**
- [Key repeated behavior pattern] [source]
- [Another notable behavioral characteristic] [source]

**PERSONALITY HIGHLIGHTS**
- [Dominant personality trait] [source]
- [Another key personality characteristic] [source]

**RECOMMENDATIONS**
- [Action item or advice based on findings] [source]
- [Another recommendation, if applicable] [source]

Rules for output:
1. Strictly follow the EXACT section headings provided.
2. Each bullet point MUST end with a citation. Cite an item with its ID, for example [SRC001].
3. Only infer information directly supported by the provided Reddit activity. If no information is available for a point, state "N/A".
4. Keep bullet points concise, 1-2 sentences.
5. Focus on the most impactful and recurring themes.
6. Maximum 10 bullet points total across all sections.
7. Be objective and factual, even if brutally honest about risks.
8. Do NOT invent information or citations.

Here is the user's activity:
%s`

const personaTemplate = `Generate a COMPREHENSIVE USER PERSONA based on the provided Reddit activity.
Each claim MUST be supported by a citation using the format [source].

# Reddit User Persona Analysis

**DEMOGRAPHICS (Infer if possible, otherwise state N/A)**
- AGE: [Value or N/A] [source]
- OCCUPATION: [Value or N/A] [source]
- STATUS (e.g., student, parent, single): [Value or N/A] [source]
- LOCATION: [Value or N/A] [source]
- ARCHETYPE (e.g., "The Tech Enthusiast", "The Community Organizer", "The Casual Lurker"): [Value or N/A] [source]

## PERSONALITY TRAITS
- [Trait 1, e.g., Analytical, Humorous, Cynical, Supportive] [source]
- [Trait 2] [source]
- [Trait 3, if applicable] [source]

## BEHAVIOR & HABITS
- [Specific online habit 1, e.g., frequent commenter, engages in debates, posts guides] [source]
- [Specific online habit 2] [source]
- [Specific online habit 3, if applicable] [source]

## MOTIVATIONS
- [What drives their activity/engagement? e.g., seeking help, sharing knowledge, debating] [source]
- [Motivation 2] [source]
- [Motivation 3, if applicable] [source]

## GOALS & NEEDS
- [What are they trying to achieve or find? e.g., solutions, entertainment, community] [source]
- [Goal/Need 2] [source]
- [Goal/Need 3, if applicable] [source]

## FRUSTRATIONS
- [What annoys them or do they complain about? e.g., bad software, political issues, misinformation] [source]
- [Frustration 2] [source]
- [Frustration 3, if applicable] [source]

## COMMUNICATION STYLE
- [How do they communicate? e.g., concise, verbose, confrontational, supportive, formal, informal] [source]
- [Communication style 2] [source]

## ONLINE ACTIVITY PATTERNS
- [When do they typically post/comment? e.g., mostly weekdays, late nights] [source]
- [What subreddits/topics do they frequent?] [source]
- [How do they interact with others? e.g., direct replies, long threads] [source]

Rules for output:
1. Strictly follow the EXACT section headings and order provided.
2. Each bullet point MUST end with a citation. Cite an item with its ID, for example [SRC001].
3. Include 2-3 specific, distinct items per section. If information is scarce, infer based on patterns or state "N/A".
4. Only infer information directly supported by the provided Reddit activity. Do NOT invent information or citations.
5. Keep bullet points concise.
6. The persona should be a cohesive narrative of the user.

Here is the user's activity:
%s`

// SummaryPrompt builds the executive summary request around the packed context.
func SummaryPrompt(context string) string { return fmt.Sprintf(summaryTemplate, context) }

// PersonaPrompt builds the persona request around the packed context.
func PersonaPrompt(context string) string { return fmt.Sprintf(personaTemplate, context) }
