package analysis

// DemoResponse is served in place of a model completion when no API key is
// configured, so the audit flow can be exercised end to end offline.
const DemoResponse = `{
  "health_score": 72,
  "total_liability_usd": 125000,
  "gaps": [
    {
      "risk_level": "critical",
      "category": "Data Protection",
      "original_clause": "The Company may share user data with third-party partners without explicit consent.",
      "regulation_reference": "GDPR Article 7 - Conditions for consent",
      "explanation": "Sharing personal data with third parties requires explicit, informed consent.",
      "liability_usd": 50000,
      "compliant_rewrite": "The Company shall obtain explicit, informed consent before sharing personal data with third-party partners and shall state the purpose and scope of the sharing."
    },
    {
      "risk_level": "high",
      "category": "Data Retention",
      "original_clause": "User data will be retained indefinitely for business purposes.",
      "regulation_reference": "GDPR Article 5(1)(e) - Storage limitation",
      "explanation": "Indefinite retention breaks the storage limitation principle.",
      "liability_usd": 35000,
      "compliant_rewrite": "User data will be retained for at most 3 years after the last interaction and then securely deleted unless retention is legally required."
    },
    {
      "risk_level": "medium",
      "category": "Right to Erasure",
      "original_clause": "Deletion requests will be processed within 90 days.",
      "regulation_reference": "GDPR Article 17 - Right to erasure",
      "explanation": "Erasure requests must be answered within one month.",
      "liability_usd": 25000,
      "compliant_rewrite": "Deletion requests will be processed within 30 days of receipt and the user will be notified on completion."
    },
    {
      "risk_level": "low",
      "category": "Privacy Notice",
      "original_clause": "Privacy policy available upon request.",
      "regulation_reference": "GDPR Article 13 - Information to be provided",
      "explanation": "Privacy information must be provided proactively at collection time.",
      "liability_usd": 15000,
      "compliant_rewrite": "The privacy policy is published on the website and presented to every user at the point of data collection."
    }
  ]
}`
