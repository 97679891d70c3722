package scaffold

import (
	"fmt"
	"strings"
	"time"

	"apivengers/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// NoAuthSchema is emitted when no saved schema looks like a user model.
const NoAuthSchema = "// No user/auth schemas found. Create a user schema first."

// DefaultJWTSecret matches the fallback the generated code reads when
// JWT_SECRET is unset.
const DefaultJWTSecret = "your-secret-key"

// AuthOptions tunes AuthSource.
type AuthOptions struct {
	// SeedAdminEmail and SeedAdminPassword, when both set, add a seed script
	// that creates an admin with a pre-hashed password.
	SeedAdminEmail    string
	SeedAdminPassword string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// UserSchema returns the first schema whose name mentions "user" or "auth".
func UserSchema(schemas []*store.Schema) (*store.Schema, bool) {
	for _, s := range schemas {
		name := strings.ToLower(s.Name)
		if strings.Contains(name, "user") || strings.Contains(name, "auth") {
			return s, true
		}
	}
	return nil, false
}

// AuthSchemaName names a saved authentication bundle.
func AuthSchemaName(now time.Time) string {
	return "Authentication_System_" + now.UTC().Format("2006-01-02T15:04:05.000Z")
}

// AuthSource renders the authentication bundle (user model, controller,
// token middleware, role guard and routes) built on the first user-like
// schema in schemas.
func AuthSource(schemas []*store.Schema, opts AuthOptions) (string, error) {
	user, ok := UserSchema(schemas)
	if !ok {
		return NoAuthSchema, nil
	}

	var b strings.Builder
	b.WriteString("\n// AUTHENTICATION SYSTEM GENERATED FROM YOUR SCHEMAS\n")
	fmt.Fprintf(&b, "// Using schema: %s\n\n", user.Name)
	b.WriteString("// 1. USER MODEL (From your database)\n")
	b.WriteString(user.MongooseSchema)
	b.WriteString("\n\n")
	b.WriteString(authController)
	b.WriteString(authMiddleware)
	b.WriteString(roleGuard)
	b.WriteString(authRoutes)

	if opts.SeedAdminEmail != "" && opts.SeedAdminPassword != "" {
		cost := opts.BcryptCost
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.SeedAdminPassword), cost)
		if err != nil {
			return "", fmt.Errorf("hash seed password: %w", err)
		}
		fmt.Fprintf(&b, adminSeed, opts.SeedAdminEmail, string(hash))
	}
	return b.String(), nil
}

const authController = `// 2. AUTHENTICATION CONTROLLER
const jwt = require('jsonwebtoken');
const bcrypt = require('bcryptjs');

class AuthController {
  // Register user
  async register(req, res) {
    try {
      const { email, password, username } = req.body;

      const existingUser = await User.findOne({
        $or: [{ email }, { username }]
      });

      if (existingUser) {
        return res.status(400).json({ error: 'User already exists' });
      }

      const hashedPassword = await bcrypt.hash(password, 12);

      const user = new User({
        email,
        password: hashedPassword,
        username,
        role: 'user',
        isVerified: false
      });

      await user.save();

      const token = jwt.sign(
        { userId: user._id, email: user.email, role: user.role },
        process.env.JWT_SECRET || 'your-secret-key',
        { expiresIn: '24h' }
      );

      res.status(201).json({
        message: 'User registered successfully',
        token,
        user: { id: user._id, email: user.email, username: user.username, role: user.role }
      });
    } catch (error) {
      res.status(500).json({ error: error.message });
    }
  }

  // Login user
  async login(req, res) {
    try {
      const { email, password } = req.body;

      const user = await User.findOne({ email });
      if (!user) {
        return res.status(401).json({ error: 'Invalid credentials' });
      }

      const isPasswordValid = await bcrypt.compare(password, user.password);
      if (!isPasswordValid) {
        return res.status(401).json({ error: 'Invalid credentials' });
      }

      user.lastLogin = new Date();
      await user.save();

      const token = jwt.sign(
        { userId: user._id, email: user.email, role: user.role },
        process.env.JWT_SECRET || 'your-secret-key',
        { expiresIn: '24h' }
      );

      res.json({
        message: 'Login successful',
        token,
        user: { id: user._id, email: user.email, username: user.username, role: user.role }
      });
    } catch (error) {
      res.status(500).json({ error: error.message });
    }
  }
}

module.exports = new AuthController();

`

const authMiddleware = `// 3. PROTECTED ROUTE MIDDLEWARE
const authenticateMiddleware = (req, res, next) => {
  const authHeader = req.headers['authorization'];
  const token = authHeader && authHeader.split(' ')[1];

  if (!token) {
    return res.status(401).json({ error: 'Access token required' });
  }

  jwt.verify(token, process.env.JWT_SECRET || 'your-secret-key', (err, user) => {
    if (err) {
      return res.status(403).json({ error: 'Invalid or expired token' });
    }
    req.user = user;
    next();
  });
};

`

const roleGuard = `// 4. ROLE GUARD
const requireRole = (role) => (req, res, next) => {
  if (role === 'any' || (req.user && (req.user.role === role || req.user.role === 'admin'))) {
    return next();
  }
  return res.status(403).json({ error: 'Insufficient permissions' });
};

`

const authRoutes = `// 5. ROUTES SETUP
const express = require('express');
const router = express.Router();
const authController = require('./controllers/authController');

router.post('/register', authController.register);
router.post('/login', authController.login);

router.get('/profile', authenticateMiddleware, async (req, res) => {
  try {
    const user = await User.findById(req.user.userId).select('-password');
    res.json(user);
  } catch (error) {
    res.status(500).json({ error: error.message });
  }
});

module.exports = { router, authenticateMiddleware, requireRole };
`

const adminSeed = `
// 6. ADMIN SEED
async function seedAdmin() {
  const exists = await User.findOne({ email: '%s' });
  if (exists) return;
  await new User({
    email: '%[1]s',
    password: '%s',
    username: 'admin',
    role: 'admin',
    isVerified: true
  }).save();
}

module.exports.seedAdmin = seedAdmin;
`
