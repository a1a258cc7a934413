package mcpserver

// ClippingFormat describes the Markdown clipping accepted by add_clipping.
const ClippingFormat = `# Jobtrail Clipping Format

A clipping is a saved job posting in Markdown. Frontmatter keys map
directly onto job fields; anything missing is derived from the body.

` + "```" + `markdown
---
title: Senior Platform Engineer   # role title; else the first "# " heading
company: Acme                     # REQUIRED in practice, shown everywhere
status: Saved                     # Saved | Applied | Interview | Offer | Rejected | Withdrawn
url: https://acme.example/jobs/42 # else the first http(s) link in the body
contactName: Dana Scully
posterEmail: dana@acme.example    # else the first email address in the body
posterMobile: "+61 400 111 222"
appliedDate: 2025-01-20           # YYYY-MM-DD, defaults to today
followUpDate: 2025-01-27          # YYYY-MM-DD
---

# Senior Platform Engineer

Posting text. Everything after the heading becomes the job's notes.
` + "```" + `

## Rules

1. Frontmatter is optional. When present the ` + "`---`" + ` fence must open the file.
2. A clipping without a title in frontmatter or a leading heading is rejected.
3. Status matching ignores case. Unknown values fall back to Saved.
4. Frontmatter values win over anything derived from the body.
`
