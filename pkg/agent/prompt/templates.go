package prompt

// Task blocks appended to the end of each user message. Each names the
// exact markdown headings the agent's parser looks for, so keep the
// heading text in sync with the corresponding agent.

const literatureTask = `## Task

Write the literature review. Structure your answer in markdown with
exactly these top-level headings:

# Review
The synthesized review, organized by theme.

# Research Gaps
A bullet list of concrete gaps in the literature.`

const introductionTask = `## Task

Write the introduction. Structure your answer in markdown with exactly
these top-level headings:

# Problem Statement
The problem and why it matters.

# Objectives
A bullet list of research objectives.

# Research Questions
A bullet list of research questions, one per objective.`

const methodologyTask = `## Task

Design the methodology. Structure your answer in markdown with exactly
these top-level headings:

# Research Design
The overall design and its rationale.

# Procedures
A bullet list of data collection and analysis procedures.

# Ethical Considerations
A bullet list of ethical considerations and how they are addressed.`

const riskTask = `## Task

Assess the risks. Structure your answer in markdown with exactly these
top-level headings:

# Risks
One bullet per risk in the form:
- <name> | <likelihood: low/medium/high> | <impact: low/medium/high> | <mitigation>

# Contingency Plans
A bullet list of contingency plans for the highest-rated risks.`

const optimizerTask = `## Task

Produce the execution plan. Structure your answer in markdown with
exactly these top-level headings:

# Timeline
One bullet per phase in the form:
- <phase name> | <duration, e.g. 3 months> | <key milestone>

# Resource Plan
The people, equipment, and budget considerations.

# Recommendations
A bullet list of prioritized recommendations.`

const qaTask = `## Task

Review the draft sections. Structure your answer in markdown with
exactly these top-level headings:

# Review Report
Your overall assessment.

# Scores
One bullet per criterion in the form:
- <criterion> | <score 0-10>
Use the criteria: coherence, completeness, rigor, writing.

# Feedback
A bullet list of the most important improvements.`

const frontMatterTask = `## Task

Write the front matter. Structure your answer in markdown with exactly
these top-level headings:

# Abstract
A 150-250 word structured abstract.

# Keywords
A bullet list of 4-8 keywords.

# Acknowledgements
Brief acknowledgements.`
